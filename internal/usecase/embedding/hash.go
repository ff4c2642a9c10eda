package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/coderag/internal/domain"
)

// DefaultDimension is the vector size of the hash fallback.
const DefaultDimension = 384

const hashBlock = 32

// HashEmbedder derives a deterministic vector from SHA-256 digests. It never
// fails and carries no semantic meaning; it keeps ingestion and retrieval
// running when no provider is reachable.
//
// Each block of 32 positions i is seeded with sha256(text + "_" + i). The 8
// big-endian uint32 words of the digest fill the first 8 positions, mapped
// to [-1, 1]. The remaining 24 positions of the block are zero.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder. A non-positive dim uses DefaultDimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

// Dimension returns the output vector size.
func (h *HashEmbedder) Dimension() int { return h.dim }

// Vector computes the embedding of text.
func (h *HashEmbedder) Vector(text string) []float32 {
	out := make([]float32, h.dim)
	for i := 0; i < h.dim; i += hashBlock {
		sum := sha256.Sum256([]byte(text + "_" + strconv.Itoa(i)))
		for j := 0; j < hashBlock && i+j < h.dim; j++ {
			if j*4+4 > len(sum) {
				break
			}
			v := binary.BigEndian.Uint32(sum[j*4:])
			out[i+j] = float32(float64(v)/math.MaxUint32*2 - 1)
		}
	}
	return out
}

// Embed implements domain.Embedder.
func (h *HashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: h.Vector(text)}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (h *HashEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.Vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}
