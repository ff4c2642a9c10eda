// Package search fuses vector and keyword retrieval into one ranking.
package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

// candidateFactor widens each ranking before fusion so documents ranked
// just below topK in one list can still surface.
const candidateFactor = 2

// Service runs hybrid retrieval.
type Service struct {
	vector  VectorSearcher
	keyword KeywordSearcher
	logger  *zap.Logger
}

// New creates a hybrid search service.
func New(vector VectorSearcher, keyword KeywordSearcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{vector: vector, keyword: keyword, logger: logger}
}

// Hybrid runs vector and keyword search in parallel and fuses them via RRF.
// When one side fails the other's ranking is returned alone; only a failure
// of both is an error.
func (s *Service) Hybrid(ctx context.Context, query string, topK int) ([]result.Result, error) {
	n := topK * candidateFactor

	var (
		knn, bm25       []result.Result
		knnErr, bm25Err error
	)
	var g errgroup.Group
	g.Go(func() error {
		knn, knnErr = s.vector.Search(ctx, query, n)
		return nil
	})
	g.Go(func() error {
		bm25, bm25Err = s.keyword.KeywordSearch(ctx, query, n)
		return nil
	})
	_ = g.Wait()

	switch {
	case knnErr != nil && bm25Err != nil:
		return nil, fmt.Errorf("hybrid search: %w", errors.Join(knnErr, bm25Err))
	case knnErr != nil:
		s.logger.Warn("Vector side of hybrid search failed", zap.Error(knnErr))
	case bm25Err != nil:
		s.logger.Warn("Keyword side of hybrid search failed", zap.Error(bm25Err))
	}

	return fuseRRF(knn, bm25, topK), nil
}
