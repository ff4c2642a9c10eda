package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/document"
	"github.com/kailas-cloud/coderag/internal/metrics"
)

// Status describes pipeline readiness.
type Status struct {
	VectorstoreHealthy bool           `json:"vectorstore_healthy"`
	TotalChunks        int            `json:"total_chunks"`
	FileTypes          map[string]int `json:"file_types"`
	EmbeddingDimension int            `json:"embedding_dimension"`
	EmbeddingProvider  string         `json:"embedding_provider"`
	IsReady            bool           `json:"is_ready"`
	Error              string         `json:"error,omitempty"`
}

// Result statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// ClearResult is the outcome of ClearAll.
type ClearResult struct {
	Status        string `json:"status"`
	DeletedChunks int    `json:"deleted_chunks"`
	Message       string `json:"message"`
}

// AddResult is the outcome of AddDocument.
type AddResult struct {
	Status      string `json:"status"`
	ChunksAdded int    `json:"chunks_added"`
	Message     string `json:"message"`
}

// Status reports readiness: the store is healthy and holds at least one chunk.
func (p *Pipeline) Status(ctx context.Context) Status {
	healthy := p.store.Health(ctx)

	stats, err := p.store.Stats(ctx)
	if err != nil {
		p.logger.Error("Failed to get pipeline status", zap.Error(err))
		return Status{
			FileTypes:         map[string]int{},
			EmbeddingProvider: "unknown",
			Error:             err.Error(),
		}
	}

	fileTypes := stats.FileTypes
	if fileTypes == nil {
		fileTypes = map[string]int{}
	}
	return Status{
		VectorstoreHealthy: healthy,
		TotalChunks:        stats.TotalChunks,
		FileTypes:          fileTypes,
		EmbeddingDimension: p.embedder.Dimension(),
		EmbeddingProvider:  p.embedder.Provider(),
		IsReady:            healthy && stats.TotalChunks > 0,
	}
}

// ClearAll empties the knowledge base.
func (p *Pipeline) ClearAll(ctx context.Context) ClearResult {
	n, err := p.store.Clear(ctx)
	if err != nil {
		p.logger.Error("Failed to clear knowledge base", zap.Error(err))
		return ClearResult{Status: StatusError, Message: fmt.Sprintf("Error clearing knowledge base: %v", err)}
	}
	return ClearResult{
		Status:        StatusSuccess,
		DeletedChunks: n,
		Message:       fmt.Sprintf("Cleared %d chunks from knowledge base", n),
	}
}

// AddDocument chunks, embeds and stores one document under ids
// "{docID}_chunk_{i}".
func (p *Pipeline) AddDocument(ctx context.Context, docID, content string, meta domchunk.Metadata) AddResult {
	meta = meta.Clone()
	meta[domchunk.KeyDocumentID] = docID

	doc, err := document.New(docID, content, meta)
	if err != nil {
		return addError(docID, err, p.logger)
	}

	chunks := p.chunker.Chunk(ctx, doc.Content(), doc.Metadata())
	if len(chunks) == 0 {
		p.logger.Warn("No chunks generated", zap.String("document_id", docID))
		return AddResult{Status: StatusWarning, Message: "No chunks generated from document"}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	emb, err := domain.EmbedAll(ctx, p.embedder, texts)
	if err != nil {
		return addError(docID, fmt.Errorf("embed chunks: %w", err), p.logger)
	}
	if len(emb.Embeddings) != len(chunks) {
		return addError(docID, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingProviderError, len(emb.Embeddings), len(chunks)), p.logger)
	}

	records := make([]domchunk.Record, len(chunks))
	for i, c := range chunks {
		records[i] = domchunk.Record{ID: doc.ChunkID(i), Chunk: c, Vector: emb.Embeddings[i]}
	}
	if _, err := p.store.Add(ctx, records); err != nil {
		return addError(docID, fmt.Errorf("store chunks: %w", err), p.logger)
	}

	metrics.IngestChunksTotal.Add(float64(len(records)))
	p.logger.Info("Document added", zap.String("document_id", docID), zap.Int("chunks", len(records)))
	return AddResult{
		Status:      StatusSuccess,
		ChunksAdded: len(records),
		Message:     fmt.Sprintf("Successfully added %d chunks", len(records)),
	}
}

func addError(docID string, err error, logger *zap.Logger) AddResult {
	logger.Error("Failed to add document", zap.String("document_id", docID), zap.Error(err))
	return AddResult{Status: StatusError, Message: fmt.Sprintf("Error adding document: %v", err)}
}
