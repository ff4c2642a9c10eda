package chi

import (
	"context"
	"iter"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kailas-cloud/coderag/internal/domain/batch"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/usecase/health"
	"github.com/kailas-cloud/coderag/internal/usecase/ingest"
	"github.com/kailas-cloud/coderag/internal/usecase/pipeline"
)

type fakeAssistant struct {
	mu       sync.Mutex
	tokens   []string
	asked    []string
	chatted  []string
	topK     int
	yielded  int
	results  []result.Result
	err      error
	status   pipeline.Status
	clear    pipeline.ClearResult
	add      pipeline.AddResult
	addedID  string
	addedMD  domchunk.Metadata
	explain  string
	explainS string
}

func (f *fakeAssistant) stream() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, t := range f.tokens {
			if !yield(t) {
				return
			}
			f.mu.Lock()
			f.yielded++
			f.mu.Unlock()
		}
	}
}

func (f *fakeAssistant) Ask(_ context.Context, _, message string, topK int) iter.Seq[string] {
	f.mu.Lock()
	f.asked = append(f.asked, message)
	f.topK = topK
	f.mu.Unlock()
	return f.stream()
}

func (f *fakeAssistant) Chat(_ context.Context, _, message string) iter.Seq[string] {
	f.mu.Lock()
	f.chatted = append(f.chatted, message)
	f.mu.Unlock()
	return f.stream()
}

func (f *fakeAssistant) Search(context.Context, string, int) ([]result.Result, error) {
	return f.results, f.err
}

func (f *fakeAssistant) Explain(_ context.Context, sessionID, _ string, _ int) (string, error) {
	f.explainS = sessionID
	return f.explain, f.err
}

func (f *fakeAssistant) Status(context.Context) pipeline.Status { return f.status }

func (f *fakeAssistant) ClearAll(context.Context) pipeline.ClearResult { return f.clear }

func (f *fakeAssistant) AddDocument(_ context.Context, id, _ string, meta domchunk.Metadata) pipeline.AddResult {
	f.addedID, f.addedMD = id, meta
	return f.add
}

type fakeIngestor struct {
	files   []ingest.File
	summary batch.Summary
}

func (f *fakeIngestor) IngestFiles(_ context.Context, files []ingest.File) batch.Summary {
	f.files = files
	return f.summary
}

func (f *fakeIngestor) Stats(context.Context) (ingest.Stats, error) {
	return ingest.Stats{MaxFileSizeMB: 50}, nil
}

type fakeSessions struct {
	history map[string][]conversation.Message
}

func (f *fakeSessions) GetOrCreate(id string) string {
	if id == "" {
		return "generated-session"
	}
	return id
}

func (f *fakeSessions) History(id string) []conversation.Message { return f.history[id] }

func (f *fakeSessions) Clear(id string) int {
	n := len(f.history[id])
	delete(f.history, id)
	return n
}

type fakeCatalog struct {
	items      []result.Result
	total      int
	offset     int
	limit      int
	keywordErr error
}

func (f *fakeCatalog) List(_ context.Context, offset, limit int) ([]result.Result, int, error) {
	f.offset, f.limit = offset, limit
	return f.items, f.total, nil
}

func (f *fakeCatalog) KeywordSearch(context.Context, string, int) ([]result.Result, error) {
	return f.items, f.keywordErr
}

type fakeHealth struct{ report health.Report }

func (f *fakeHealth) Check(context.Context) health.Report { return f.report }

type fixture struct {
	assistant *fakeAssistant
	ingestor  *fakeIngestor
	sessions  *fakeSessions
	catalog   *fakeCatalog
	health    *fakeHealth
	handler   http.Handler
}

func newFixture(t *testing.T, apiKeys ...string) *fixture {
	t.Helper()
	f := &fixture{
		assistant: &fakeAssistant{},
		ingestor:  &fakeIngestor{},
		sessions:  &fakeSessions{history: map[string][]conversation.Message{}},
		catalog:   &fakeCatalog{},
		health:    &fakeHealth{report: health.Report{Status: health.Healthy, Checks: map[string]health.CheckResult{}}},
	}
	srv := NewServer(f.assistant, f.ingestor, f.sessions, f.catalog, f.health, nil).WithPagination(2, 10)
	f.handler = NewRouter(srv, apiKeys, nil)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func record(id, content string) result.Result {
	return result.New(id, domchunk.Chunk{Content: content, Metadata: domchunk.Metadata{domchunk.KeyFilename: "a.go"}}, 0.25)
}
