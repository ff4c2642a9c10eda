package result

import (
	"math"
	"testing"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

func TestNew(t *testing.T) {
	c := chunk.Chunk{Content: "hello", Metadata: chunk.Metadata{chunk.KeyFilename: "a.go"}}

	r := New("doc-1_chunk_0", c, 0.25)

	if r.ID() != "doc-1_chunk_0" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Content() != "hello" {
		t.Errorf("Content() = %q", r.Content())
	}
	if r.Metadata().String(chunk.KeyFilename) != "a.go" {
		t.Errorf("Metadata() = %v", r.Metadata())
	}
	if r.Distance() != 0.25 {
		t.Errorf("Distance() = %f", r.Distance())
	}
	if math.Abs(r.Similarity()-0.75) > 1e-9 {
		t.Errorf("Similarity() = %f", r.Similarity())
	}
}

func TestNewKeyword(t *testing.T) {
	r := NewKeyword("a", chunk.Chunk{Content: "x"}, 2.5)
	if r.Score() != 2.5 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Similarity() != 0 {
		t.Errorf("Similarity() = %f, want 0 for keyword hits", r.Similarity())
	}
}

func TestWithScore(t *testing.T) {
	r := New("a", chunk.Chunk{Content: "x"}, 0.2)
	fused := r.WithScore(0.03)
	if fused.Score() != 0.03 || fused.Distance() != 0.2 {
		t.Errorf("WithScore() = score %f distance %f", fused.Score(), fused.Distance())
	}
	if r.Score() != 0 {
		t.Errorf("original mutated: Score() = %f", r.Score())
	}
}
