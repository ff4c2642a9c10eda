package result

import "github.com/kailas-cloud/coderag/internal/domain/chunk"

// Result is one retrieved record.
type Result struct {
	id       string
	chunk    chunk.Chunk
	distance float64
	score    float64
}

// New creates a search result from a cosine distance.
func New(id string, c chunk.Chunk, distance float64) Result {
	return Result{id: id, chunk: c, distance: distance}
}

// NewKeyword creates a result from a BM25 relevance score.
func NewKeyword(id string, c chunk.Chunk, score float64) Result {
	return Result{id: id, chunk: c, distance: 1, score: score}
}

// ID returns the stored record identifier.
func (r Result) ID() string { return r.id }

// Chunk returns the stored chunk.
func (r Result) Chunk() chunk.Chunk { return r.chunk }

// Content returns the chunk text.
func (r Result) Content() string { return r.chunk.Content }

// Metadata returns the chunk metadata.
func (r Result) Metadata() chunk.Metadata { return r.chunk.Metadata }

// Distance returns the raw vector distance (lower is closer).
func (r Result) Distance() float64 { return r.distance }

// Similarity returns 1 - distance.
func (r Result) Similarity() float64 { return 1 - r.distance }

// Score returns the relevance of a keyword or fused hit, 0 for vector hits.
func (r Result) Score() float64 { return r.score }

// WithScore returns a copy of r carrying score. The distance is kept.
func (r Result) WithScore(score float64) Result {
	r.score = score
	return r
}
