// Package embedding turns text into fixed-size vectors through an ordered
// chain of providers ending in a deterministic hash fallback.
package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/metrics"
)

// Tier labels.
const (
	TierPrimary   = "primary"
	TierSecondary = "secondary"
	TierHash      = "hash"
)

// Tier is one provider in the fallback chain.
type Tier struct {
	Label    string // TierPrimary or TierSecondary
	Name     string // provider name, e.g. "groq" or "ollama"
	Embedder domain.Embedder
}

func (t Tier) id() string { return t.Label + ":" + t.Name }

// Gateway tries each tier in order and falls back to hash embeddings. A tier
// that errors or returns vectors of the wrong size counts as failed.
// Embed and BatchEmbed fail only when ctx is done.
type Gateway struct {
	tiers  []Tier
	hash   *HashEmbedder
	dim    int
	logger *zap.Logger

	mu       sync.RWMutex
	provider string
}

// NewGateway creates a gateway producing vectors of size dim.
func NewGateway(dim int, logger *zap.Logger, tiers ...Tier) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	hash := NewHashEmbedder(dim)
	return &Gateway{tiers: tiers, hash: hash, dim: hash.Dimension(), logger: logger, provider: TierHash}
}

// Dimension returns the vector size every call produces.
func (g *Gateway) Dimension() int { return g.dim }

// Provider reports which tier served the most recent call:
// "primary:<name>", "secondary:<name>" or "hash".
func (g *Gateway) Provider() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.provider
}

// Embed implements domain.Embedder.
func (g *Gateway) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	for _, t := range g.tiers {
		res, err := t.Embedder.Embed(ctx, text)
		if err == nil {
			err = g.checkDim(res.Embedding)
		}
		if err == nil {
			g.served(t.Label, t.id())
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.EmbeddingResult{}, ctxErr
		}
		g.logger.Warn("Embedding tier failed", zap.String("tier", t.id()), zap.Error(err))
	}

	g.logger.Warn("Using hash embedding fallback")
	g.served(TierHash, TierHash)
	return g.hash.Embed(ctx, text)
}

// BatchEmbed implements domain.BatchEmbedder. The whole batch is served by a
// single tier so vectors within one call are comparable.
func (g *Gateway) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	for _, t := range g.tiers {
		res, err := domain.EmbedAll(ctx, t.Embedder, texts)
		if err == nil {
			err = g.checkBatch(res, len(texts))
		}
		if err == nil {
			g.served(t.Label, t.id())
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.BatchEmbeddingResult{}, ctxErr
		}
		g.logger.Warn("Embedding tier failed",
			zap.String("tier", t.id()), zap.Int("batch_size", len(texts)), zap.Error(err))
	}

	g.logger.Warn("Using hash embedding fallback", zap.Int("batch_size", len(texts)))
	g.served(TierHash, TierHash)
	return g.hash.BatchEmbed(ctx, texts)
}

// HealthCheck reports whether the first tier is reachable. The gateway keeps
// serving through fallbacks either way.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if len(g.tiers) == 0 {
		return fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingProviderError)
	}
	hc, ok := g.tiers[0].Embedder.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%s: %w", g.tiers[0].id(), err)
	}
	return nil
}

func (g *Gateway) served(label, id string) {
	metrics.EmbeddingTierTotal.WithLabelValues(label).Inc()
	g.mu.Lock()
	g.provider = id
	g.mu.Unlock()
}

func (g *Gateway) checkDim(v []float32) error {
	if len(v) != g.dim {
		return domain.NewDimensionMismatch(g.dim, len(v))
	}
	return nil
}

func (g *Gateway) checkBatch(res domain.BatchEmbeddingResult, n int) error {
	if len(res.Embeddings) != n {
		return fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrEmbeddingProviderError, len(res.Embeddings), n)
	}
	for _, v := range res.Embeddings {
		if err := g.checkDim(v); err != nil {
			return err
		}
	}
	return nil
}
