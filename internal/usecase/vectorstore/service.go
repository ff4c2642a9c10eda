// Package vectorstore is the gateway to the persistent chunk collection.
package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

// Stats summarizes the stored collection.
type Stats struct {
	TotalChunks int            `json:"total_chunks"`
	FileTypes   map[string]int `json:"file_types"`
}

// Service serializes mutations (Add, Clear, DeleteByFilter) behind one lock;
// reads run concurrently with each other and with mutations.
type Service struct {
	chunks      ChunkRepository
	collections CollectionRepository
	db          Pinger
	name        string
	dim         int
	logger      *zap.Logger

	mu sync.Mutex
}

// New creates a vector store gateway for one collection of dim-sized vectors.
func New(
	chunks ChunkRepository, collections CollectionRepository, db Pinger,
	name string, dim int, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{chunks: chunks, collections: collections, db: db, name: name, dim: dim, logger: logger}
}

// Init creates the collection if absent and verifies its vector dimension.
func (s *Service) Init(ctx context.Context) error {
	info, err := s.collections.Ensure(ctx, s.name, s.dim)
	if err != nil {
		return fmt.Errorf("ensure collection %s: %w", s.name, err)
	}
	s.logger.Info("Vector store ready",
		zap.String("collection", info.Name),
		zap.Int("dim", info.Dim),
		zap.Time("created_at", info.CreatedAt))
	return nil
}

// Name returns the collection name.
func (s *Service) Name() string { return s.name }

// Add stores records and returns their ids in input order.
func (s *Service) Add(ctx context.Context, records []domchunk.Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", domain.ErrInvalidInput, i)
		}
		if len(rec.Vector) != s.dim {
			return nil, domain.NewDimensionMismatch(s.dim, len(rec.Vector))
		}
		ids[i] = rec.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chunks.Put(ctx, records); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return ids, nil
}

// Query returns up to k nearest records, closest first. A failing backend
// yields an empty result instead of an error so callers can degrade.
func (s *Service) Query(ctx context.Context, vector []float32, k int, filters filter.Expression) ([]result.Result, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) != s.dim {
		return nil, domain.NewDimensionMismatch(s.dim, len(vector))
	}
	res, err := s.chunks.KNN(ctx, vector, k, filters)
	if err != nil {
		s.logger.Error("Vector query failed", zap.String("collection", s.name), zap.Error(err))
		return []result.Result{}, nil
	}
	return res, nil
}

// KeywordSearch runs a BM25 search over chunk content.
func (s *Service) KeywordSearch(ctx context.Context, text string, k int) ([]result.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	res, err := s.chunks.Keyword(ctx, text, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return res, nil
}

// List returns a page of stored records and the total count.
func (s *Service) List(ctx context.Context, offset, limit int) ([]result.Result, int, error) {
	res, total, err := s.chunks.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return res, total, nil
}

// Clear drops and recreates the collection and returns how many records it held.
func (s *Service) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.chunks.Count(ctx)
	if err != nil {
		s.logger.Warn("Count before clear failed", zap.Error(err))
		n = 0
	}
	if err := s.collections.Recreate(ctx, s.name, s.dim); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	s.logger.Info("Collection cleared", zap.String("collection", s.name), zap.Int("deleted", n))
	return n, nil
}

// DeleteByFilter removes the records matching filters.
func (s *Service) DeleteByFilter(ctx context.Context, filters filter.Expression) (int, error) {
	if filters.IsEmpty() {
		return 0, fmt.Errorf("%w: filter is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.chunks.DeleteByFilter(ctx, filters)
	if err != nil {
		return n, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return n, nil
}

// Stats returns the record count and the file_type histogram.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	n, err := s.chunks.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	types, err := s.chunks.CountByFileType(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return Stats{TotalChunks: n, FileTypes: types}, nil
}

// Health reports whether the backend answers and the index exists.
func (s *Service) Health(ctx context.Context) bool {
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("Vector store ping failed", zap.Error(err))
		return false
	}
	ok, err := s.IndexReady(ctx)
	if err != nil {
		s.logger.Warn("Vector store index check failed", zap.Error(err))
		return false
	}
	return ok
}

// IndexReady reports whether the collection index exists.
func (s *Service) IndexReady(ctx context.Context) (bool, error) {
	return s.collections.IndexReady(ctx, s.name)
}

// Dimension returns the vector size of the collection.
func (s *Service) Dimension() int { return s.dim }
