package chunking

import (
	"context"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// wordCount approximates tokens as whitespace-separated words.
func wordCount(s string) int { return len(strings.Fields(s)) }

func splitLines(text string) []string { return strings.Split(text, "\n") }

// ByLines accumulates lines until adding the next one would exceed budget
// words. Every input line lands in exactly one chunk; a single line longer
// than the budget becomes its own chunk.
func ByLines(text string, meta chunk.Metadata, budget int) []chunk.Chunk {
	lines := splitLines(text)
	var (
		out   []chunk.Chunk
		start int
		size  int
	)

	emit := func(end int) {
		out = append(out, chunk.New(strings.Join(lines[start:end], "\n"), chunk.TypeLineBased, meta, chunk.Metadata{
			chunk.KeyStartLine: start + 1,
			chunk.KeyEndLine:   end,
			chunk.KeyLineCount: end - start,
		}))
	}

	for i, line := range lines {
		n := wordCount(line)
		if size+n > budget && i > start {
			emit(i)
			start, size = i, 0
		}
		size += n
	}
	emit(len(lines))
	return out
}

func lineStrategy(budget int) Strategy {
	return func(_ context.Context, text string, meta chunk.Metadata) ([]chunk.Chunk, error) {
		return ByLines(text, meta, budget), nil
	}
}
