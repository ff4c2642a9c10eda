package chunking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// Strategy splits text into chunks. An empty result with a nil error means
// "not applicable" and lets a cascade advance.
type Strategy func(ctx context.Context, text string, meta chunk.Metadata) ([]chunk.Chunk, error)

// Tier is one named step of a cascade.
type Tier struct {
	Name string
	Run  Strategy
}

// errNoChunks is reported when every tier of a cascade came up empty.
var errNoChunks = errors.New("no tier produced chunks")

// Cascade runs tiers in order and returns the first non-empty result.
// A tier that errors or panics is logged and skipped.
func Cascade(logger *zap.Logger, tiers ...Tier) Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, text string, meta chunk.Metadata) ([]chunk.Chunk, error) {
		for _, tier := range tiers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			chunks, err := runTier(ctx, tier, text, meta)
			if err != nil {
				logger.Debug("chunking tier failed",
					zap.String("tier", tier.Name),
					zap.String("file", meta.String(chunk.KeyFilename)),
					zap.Error(err))
				continue
			}
			if len(chunks) > 0 {
				return chunks, nil
			}
		}
		return nil, errNoChunks
	}
}

func runTier(ctx context.Context, tier Tier, text string, meta chunk.Metadata) (chunks []chunk.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks, err = nil, fmt.Errorf("%s tier panic: %v", tier.Name, r)
		}
	}()
	return tier.Run(ctx, text, meta)
}
