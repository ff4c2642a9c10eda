package vectorstore

import (
	"context"

	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/repository/collection"
)

// ChunkRepository persists and retrieves chunk records.
type ChunkRepository interface {
	Put(ctx context.Context, records []domchunk.Record) error
	KNN(ctx context.Context, vector []float32, k int, filters filter.Expression) ([]result.Result, error)
	Keyword(ctx context.Context, text string, k int) ([]result.Result, error)
	List(ctx context.Context, offset, limit int) ([]result.Result, int, error)
	Count(ctx context.Context) (int, error)
	CountByFileType(ctx context.Context) (map[string]int, error)
	DeleteByFilter(ctx context.Context, filters filter.Expression) (int, error)
}

// CollectionRepository manages the backing collection and its index.
type CollectionRepository interface {
	Ensure(ctx context.Context, name string, dim int) (collection.Info, error)
	Recreate(ctx context.Context, name string, dim int) error
	IndexReady(ctx context.Context, name string) (bool, error)
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
