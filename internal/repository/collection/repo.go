// Package collection manages collection metadata and the FT index that backs
// chunk retrieval.
package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/coderag/internal/db"
	"github.com/kailas-cloud/coderag/internal/domain"
)

// store is the consumer interface for collections (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores collection metadata and manages its index.
type Repo struct {
	store  store
	prefix string
	hnsw   HNSWConfig
	now    func() time.Time
}

// New creates a collection repository. prefix is the global key prefix, e.g. "coderag:".
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, hnsw: HNSWConfig{M: 16, EFConstruct: 200}, now: time.Now}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure creates the collection if needed and returns its metadata.
// An existing collection with a different dimension fails with
// domain.ErrVectorDimMismatch. A missing index is recreated.
func (r *Repo) Ensure(ctx context.Context, name string, dim int) (Info, error) {
	metaKey := r.metaKey(name)

	m, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return Info{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}

	created := false
	var info Info
	if len(m) == 0 {
		info = Info{Name: name, Dim: dim, CreatedAt: r.now().UTC()}
		if err := r.store.HSet(ctx, metaKey, infoToHash(info)); err != nil {
			return Info{}, fmt.Errorf("hset collection %s: %w", name, err)
		}
		created = true
	} else {
		info, err = infoFromHash(name, m)
		if err != nil {
			return Info{}, fmt.Errorf("parse collection %s: %w", name, err)
		}
		if info.Dim != dim {
			return Info{}, domain.NewDimensionMismatch(info.Dim, dim)
		}
	}

	if err := r.ensureIndex(ctx, name, info.Dim); err != nil {
		if created {
			return Info{}, errors.Join(err, r.store.Del(ctx, metaKey))
		}
		return Info{}, err
	}
	return info, nil
}

// Get returns the collection metadata or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, name string) (Info, error) {
	m, err := r.store.HGetAll(ctx, r.metaKey(name))
	if err != nil {
		return Info{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return Info{}, domain.ErrNotFound
	}
	return infoFromHash(name, m)
}

// Recreate drops the index together with every record it covers and builds
// an empty index with the same schema. Metadata is kept.
func (r *Repo) Recreate(ctx context.Context, name string, dim int) error {
	if err := r.store.DropIndex(ctx, r.indexName(name), true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return r.ensureIndex(ctx, name, dim)
}

// IndexReady reports whether the collection index exists.
func (r *Repo) IndexReady(ctx context.Context, name string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.indexName(name))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	return ok, nil
}

func (r *Repo) ensureIndex(ctx context.Context, name string, dim int) error {
	exists, err := r.store.IndexExists(ctx, r.indexName(name))
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}
	def, err := r.buildIndex(name, dim)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Key patterns: {prefix}collection:{name}, {prefix}{name}:idx, {prefix}{name}:

func (r *Repo) metaKey(name string) string {
	return fmt.Sprintf("%scollection:%s", r.prefix, name)
}

func (r *Repo) indexName(name string) string {
	return fmt.Sprintf("%s%s:idx", r.prefix, name)
}

func (r *Repo) recordPrefix(name string) string {
	return fmt.Sprintf("%s%s:", r.prefix, name)
}
