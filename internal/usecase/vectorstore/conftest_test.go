package vectorstore

import (
	"context"

	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/repository/collection"
)

const testDim = 3

type mockChunks struct {
	putFn             func(ctx context.Context, records []domchunk.Record) error
	knnFn             func(ctx context.Context, vector []float32, k int, f filter.Expression) ([]result.Result, error)
	keywordFn         func(ctx context.Context, text string, k int) ([]result.Result, error)
	listFn            func(ctx context.Context, offset, limit int) ([]result.Result, int, error)
	countFn           func(ctx context.Context) (int, error)
	countByFileTypeFn func(ctx context.Context) (map[string]int, error)
	deleteFn          func(ctx context.Context, f filter.Expression) (int, error)
}

func (m *mockChunks) Put(ctx context.Context, records []domchunk.Record) error {
	if m.putFn != nil {
		return m.putFn(ctx, records)
	}
	return nil
}

func (m *mockChunks) KNN(ctx context.Context, v []float32, k int, f filter.Expression) ([]result.Result, error) {
	if m.knnFn != nil {
		return m.knnFn(ctx, v, k, f)
	}
	return nil, nil
}

func (m *mockChunks) Keyword(ctx context.Context, text string, k int) ([]result.Result, error) {
	if m.keywordFn != nil {
		return m.keywordFn(ctx, text, k)
	}
	return nil, nil
}

func (m *mockChunks) List(ctx context.Context, offset, limit int) ([]result.Result, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockChunks) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockChunks) CountByFileType(ctx context.Context) (map[string]int, error) {
	if m.countByFileTypeFn != nil {
		return m.countByFileTypeFn(ctx)
	}
	return map[string]int{}, nil
}

func (m *mockChunks) DeleteByFilter(ctx context.Context, f filter.Expression) (int, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, f)
	}
	return 0, nil
}

type mockCollections struct {
	ensureFn   func(ctx context.Context, name string, dim int) (collection.Info, error)
	recreateFn func(ctx context.Context, name string, dim int) error
	readyFn    func(ctx context.Context, name string) (bool, error)
}

func (m *mockCollections) Ensure(ctx context.Context, name string, dim int) (collection.Info, error) {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, name, dim)
	}
	return collection.Info{Name: name, Dim: dim}, nil
}

func (m *mockCollections) Recreate(ctx context.Context, name string, dim int) error {
	if m.recreateFn != nil {
		return m.recreateFn(ctx, name, dim)
	}
	return nil
}

func (m *mockCollections) IndexReady(ctx context.Context, name string) (bool, error) {
	if m.readyFn != nil {
		return m.readyFn(ctx, name)
	}
	return true, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestService(chunks *mockChunks, colls *mockCollections, db *mockPinger) *Service {
	return New(chunks, colls, db, "code", testDim, nil)
}

func record(id string) domchunk.Record {
	return domchunk.Record{
		ID:     id,
		Chunk:  domchunk.Chunk{Content: "x", Metadata: domchunk.Metadata{"filename": "a.go"}},
		Vector: []float32{0.1, 0.2, 0.3},
	}
}
