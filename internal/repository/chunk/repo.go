// Package chunk stores embedded chunks as Redis hashes and retrieves them
// through the collection's FT index.
package chunk

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/db"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
)

// deleteBatch bounds how many keys one FT.SEARCH NOCONTENT page returns.
const deleteBatch = 500

// store is the consumer interface for chunk records (ISP).
//
//nolint:interfacebloat // chunk repo needs write, search and aggregate operations
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) (int, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchKeys(ctx context.Context, index, query string, offset, limit int) ([]string, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	GroupCount(ctx context.Context, index, query, field string) (map[string]int, error)
}

var (
	returnFields = []string{fieldContent, fieldMeta, domchunk.KeyFilename, domchunk.KeyFileType, domchunk.KeyChunkType}
	knnFields    = []string{fieldContent, fieldMeta, domchunk.KeyFilename, domchunk.KeyFileType, domchunk.KeyChunkType, "__vector_score"}
)

// Repo reads and writes the chunk records of one collection.
type Repo struct {
	store      store
	prefix     string
	collection string
	logger     *zap.Logger
}

// New creates a chunk repository. prefix is the global key prefix, e.g. "coderag:".
func New(s store, prefix, collection string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, prefix: prefix, collection: collection, logger: logger}
}

// Put writes records with a pipelined HSET. Existing ids are overwritten.
func (r *Repo) Put(ctx context.Context, records []domchunk.Record) error {
	if len(records) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(records))
	for i, rec := range records {
		fields, err := buildHashFields(rec)
		if err != nil {
			return fmt.Errorf("record %s: %w", rec.ID, err)
		}
		items[i] = db.HashSetItem{Key: r.recordKey(rec.ID), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset %d records: %w", len(items), err)
	}
	return nil
}

// KNN returns up to k records nearest to vector, ascending by cosine distance.
func (r *Repo) KNN(ctx context.Context, vector []float32, k int, filters filter.Expression) ([]result.Result, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: knnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w", r.collection, err)
	}
	return r.toResults(sr, func(id string, c domchunk.Chunk, score float64) result.Result {
		return result.New(id, c, score)
	}), nil
}

// Keyword runs a BM25 search over chunk content.
func (r *Repo) Keyword(ctx context.Context, text string, k int) ([]result.Result, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        text,
		TopK:         k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("bm25 search %s: %w", r.collection, err)
	}
	return r.toResults(sr, result.NewKeyword), nil
}

// List returns a page of stored records in index order.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]result.Result, int, error) {
	sr, err := r.store.SearchList(ctx, r.indexName(), "*", offset, limit, returnFields)
	if err != nil {
		return nil, 0, fmt.Errorf("search list %s: %w", r.collection, err)
	}
	if sr == nil {
		return nil, 0, nil
	}
	return r.toResults(sr, func(id string, c domchunk.Chunk, _ float64) result.Result {
		return result.New(id, c, 0)
	}), sr.Total, nil
}

// Count returns the number of stored records.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", r.collection, err)
	}
	return n, nil
}

// CountByFileType returns the record histogram over file_type.
func (r *Repo) CountByFileType(ctx context.Context) (map[string]int, error) {
	counts, err := r.store.GroupCount(ctx, r.indexName(), "*", domchunk.KeyFileType)
	if err != nil {
		return nil, fmt.Errorf("group count %s: %w", r.collection, err)
	}
	return counts, nil
}

// DeleteByFilter removes every record matching filters and returns how many
// were deleted. An empty filter is rejected; use the collection's Recreate
// to clear everything.
func (r *Repo) DeleteByFilter(ctx context.Context, filters filter.Expression) (int, error) {
	query := db.FilterQuery(filters)
	if query == "" {
		return 0, fmt.Errorf("delete requires a filter")
	}

	total := 0
	for {
		keys, err := r.store.SearchKeys(ctx, r.indexName(), query, 0, deleteBatch)
		if err != nil {
			return total, fmt.Errorf("search keys %s: %w", r.collection, err)
		}
		if len(keys) == 0 {
			return total, nil
		}
		n, err := r.store.DelMulti(ctx, keys)
		total += n
		if err != nil {
			return total, fmt.Errorf("del %d keys: %w", len(keys), err)
		}
		if n == 0 || len(keys) < deleteBatch {
			return total, nil
		}
	}
}

func (r *Repo) toResults(
	sr *db.SearchResult, build func(id string, c domchunk.Chunk, score float64) result.Result,
) []result.Result {
	if sr == nil {
		return nil
	}
	out := make([]result.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		c, err := parseHashFields(e.Fields)
		if err != nil {
			r.logger.Warn("Skipping unreadable chunk", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		out = append(out, build(r.recordID(e.Key), c, e.Score))
	}
	return out
}

// Key patterns: {prefix}{collection}:{id}, {prefix}{collection}:idx

func (r *Repo) recordKey(id string) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, r.collection, id)
}

func (r *Repo) recordID(key string) string {
	return strings.TrimPrefix(key, fmt.Sprintf("%s%s:", r.prefix, r.collection))
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", r.prefix, r.collection)
}
