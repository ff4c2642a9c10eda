package ingest

import (
	"context"

	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/ingest/extract"
	"github.com/kailas-cloud/coderag/internal/usecase/vectorstore"
)

// Extractor converts raw file bytes to text.
type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (extract.Extraction, error)
}

// Chunker splits extracted text into chunks.
type Chunker interface {
	Chunk(ctx context.Context, text string, meta domchunk.Metadata) []domchunk.Chunk
}

// Store is the subset of the vector store gateway ingestion writes to.
type Store interface {
	Add(ctx context.Context, records []domchunk.Record) ([]string, error)
	DeleteByFilter(ctx context.Context, filters filter.Expression) (int, error)
	Stats(ctx context.Context) (vectorstore.Stats, error)
}
