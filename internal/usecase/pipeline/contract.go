package pipeline

import (
	"context"

	"github.com/kailas-cloud/coderag/internal/domain"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/usecase/vectorstore"
)

// Embedder vectorizes queries and chunks and reports which tier served last.
type Embedder interface {
	domain.Embedder
	domain.BatchEmbedder
	Dimension() int
	Provider() string
}

// VectorStore is the subset of the vector store gateway the pipeline uses.
type VectorStore interface {
	Add(ctx context.Context, records []domchunk.Record) ([]string, error)
	Query(ctx context.Context, vector []float32, k int, filters filter.Expression) ([]result.Result, error)
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context) (vectorstore.Stats, error)
	Health(ctx context.Context) bool
}

// Sessions is the conversation history collaborator.
type Sessions interface {
	History(id string) []conversation.Message
	Append(id string, role conversation.Role, content string)
}

// Chunker splits extracted text into chunks.
type Chunker interface {
	Chunk(ctx context.Context, text string, meta domchunk.Metadata) []domchunk.Chunk
}
