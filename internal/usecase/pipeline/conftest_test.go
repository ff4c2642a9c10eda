package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/kailas-cloud/coderag/internal/domain"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/conversation"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/domain/search/result"
	"github.com/kailas-cloud/coderag/internal/usecase/session"
	"github.com/kailas-cloud/coderag/internal/usecase/vectorstore"
)

type fakeEmbedder struct {
	err      error
	provider string
	calls    int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

func (f *fakeEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 0, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

func (f *fakeEmbedder) Provider() string {
	if f.provider == "" {
		return "hash"
	}
	return f.provider
}

type fakeStore struct {
	healthy  bool
	total    int
	statsErr error
	results  []result.Result
	queryErr error
	clearN   int
	clearErr error
	addErr   error

	mu    sync.Mutex
	added []domchunk.Record
	k     int
}

func (f *fakeStore) Add(_ context.Context, recs []domchunk.Record) ([]string, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, recs...)
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids, nil
}

func (f *fakeStore) Query(_ context.Context, _ []float32, k int, _ filter.Expression) ([]result.Result, error) {
	f.k = k
	return f.results, f.queryErr
}

func (f *fakeStore) Clear(context.Context) (int, error) { return f.clearN, f.clearErr }

func (f *fakeStore) Stats(context.Context) (vectorstore.Stats, error) {
	if f.statsErr != nil {
		return vectorstore.Stats{}, f.statsErr
	}
	return vectorstore.Stats{TotalChunks: f.total, FileTypes: map[string]int{".go": f.total}}, nil
}

func (f *fakeStore) Health(context.Context) bool { return f.healthy }

// fakeGenerator streams tokens; failAfter >= 0 makes Recv fail after that
// many tokens.
type fakeGenerator struct {
	tokens    []string
	openErr   error
	failAfter int
	recvErr   error

	got    []conversation.Message
	closed bool
}

func (f *fakeGenerator) Stream(_ context.Context, msgs []conversation.Message) (domain.TokenStream, error) {
	f.got = msgs
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeStream{gen: f}, nil
}

type fakeStream struct {
	gen *fakeGenerator
	pos int
}

func (s *fakeStream) Recv() (string, error) {
	if s.gen.recvErr != nil && s.pos == s.gen.failAfter {
		return "", s.gen.recvErr
	}
	if s.pos >= len(s.gen.tokens) {
		return "", io.EOF
	}
	tok := s.gen.tokens[s.pos]
	s.pos++
	return tok, nil
}

func (s *fakeStream) Close() error {
	s.gen.closed = true
	return nil
}

type fakeChunker struct {
	chunks []domchunk.Chunk
	meta   domchunk.Metadata
}

func (f *fakeChunker) Chunk(_ context.Context, text string, meta domchunk.Metadata) []domchunk.Chunk {
	f.meta = meta
	if f.chunks != nil {
		return f.chunks
	}
	return []domchunk.Chunk{domchunk.New(text, domchunk.TypeLineBased, meta, nil)}
}

type fixture struct {
	emb      *fakeEmbedder
	store    *fakeStore
	sessions *session.Store
	gen      *fakeGenerator
	chunker  *fakeChunker
	p        *Pipeline
}

func newFixture() *fixture {
	f := &fixture{
		emb:      &fakeEmbedder{},
		store:    &fakeStore{healthy: true, total: 10},
		sessions: session.New(nil),
		gen:      &fakeGenerator{tokens: []string{"Hel", "lo"}},
		chunker:  &fakeChunker{},
	}
	f.p = New(f.emb, f.store, f.sessions, f.gen, f.chunker, nil)
	return f
}

func collect(seq func(func(string) bool)) []string {
	var out []string
	for tok := range seq {
		out = append(out, tok)
	}
	return out
}
