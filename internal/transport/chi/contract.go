package chi

import (
	"context"
	"iter"

	"github.com/kailas-cloud/coderag/internal/domain/batch"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/coderag/internal/usecase/health"
	"github.com/kailas-cloud/coderag/internal/usecase/ingest"
	"github.com/kailas-cloud/coderag/internal/usecase/pipeline"
)

// Assistant answers questions and manages the knowledge base.
type Assistant interface {
	Ask(ctx context.Context, sessionID, message string, topK int) iter.Seq[string]
	Chat(ctx context.Context, sessionID, message string) iter.Seq[string]
	Search(ctx context.Context, query string, topK int) ([]result.Result, error)
	Explain(ctx context.Context, sessionID, query string, topK int) (string, error)
	Status(ctx context.Context) pipeline.Status
	ClearAll(ctx context.Context) pipeline.ClearResult
	AddDocument(ctx context.Context, docID, content string, meta domchunk.Metadata) pipeline.AddResult
}

// Ingestor ingests uploaded files.
type Ingestor interface {
	IngestFiles(ctx context.Context, files []ingest.File) batch.Summary
	Stats(ctx context.Context) (ingest.Stats, error)
}

// Sessions exposes conversation history.
type Sessions interface {
	GetOrCreate(id string) string
	History(id string) []conversation.Message
	Clear(id string) int
}

// Catalog browses stored chunks.
type Catalog interface {
	List(ctx context.Context, offset, limit int) ([]result.Result, int, error)
	KeywordSearch(ctx context.Context, text string, k int) ([]result.Result, error)
}

// HybridSearcher fuses vector and keyword rankings.
type HybridSearcher interface {
	Hybrid(ctx context.Context, query string, topK int) ([]result.Result, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
