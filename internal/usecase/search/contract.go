package search

import (
	"context"

	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

// VectorSearcher embeds the query and returns the nearest chunks.
type VectorSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]result.Result, error)
}

// KeywordSearcher runs full-text search over chunk content.
type KeywordSearcher interface {
	KeywordSearch(ctx context.Context, text string, k int) ([]result.Result, error)
}
