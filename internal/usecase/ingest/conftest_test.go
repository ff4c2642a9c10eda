package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/coderag/internal/chunking"
	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/domain/batch"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/ingest/extract"
	"github.com/kailas-cloud/coderag/internal/usecase/vectorstore"
)

var errEmbed = errors.New("embedding backend down")

type fakeEmbedder struct {
	mu      sync.Mutex
	failOn  string
	batches []int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := f.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, len(texts))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if f.failOn != "" && strings.Contains(t, f.failOn) {
			return domain.BatchEmbeddingResult{}, errEmbed
		}
		out[i] = []float32{1, 0, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

type fakeStore struct {
	mu       sync.Mutex
	records  []domchunk.Record
	deleted  []filter.Expression
	deleteN  int
	addErr   error
	statsErr error
}

func (f *fakeStore) Add(_ context.Context, recs []domchunk.Record) ([]string, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recs...)
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids, nil
}

// DeleteByFilter drops records whose metadata matches every condition.
func (f *fakeStore) DeleteByFilter(_ context.Context, expr filter.Expression) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, expr)
	kept := f.records[:0]
	removed := 0
	for _, r := range f.records {
		match := true
		for _, c := range expr.Must() {
			if r.Chunk.Metadata.String(c.Key()) != c.Match() {
				match = false
				break
			}
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return f.deleteN + removed, nil
}

func (f *fakeStore) Stats(context.Context) (vectorstore.Stats, error) {
	if f.statsErr != nil {
		return vectorstore.Stats{}, f.statsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return vectorstore.Stats{TotalChunks: len(f.records), FileTypes: map[string]int{}}, nil
}

func (f *fakeStore) files() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, r := range f.records {
		out[r.Chunk.Metadata.String(domchunk.KeyFilename)]++
	}
	return out
}

func newTestService(emb *fakeEmbedder, store *fakeStore, cfg Config) *Service {
	svc := New(extract.New(nil, nil), chunking.New(), emb, store, cfg, nil)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

// fakeSyncer records watcher callbacks.
type fakeSyncer struct {
	reingested chan string
	removed    chan string
}

func newFakeSyncer() *fakeSyncer {
	return &fakeSyncer{reingested: make(chan string, 16), removed: make(chan string, 16)}
}

func (f *fakeSyncer) Reingest(_ context.Context, path string) batch.FileResult {
	f.reingested <- path
	return batch.NewOK(path, 1)
}

func (f *fakeSyncer) Remove(_ context.Context, path string) (int, error) {
	f.removed <- path
	return 1, nil
}
