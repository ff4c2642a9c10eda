package chunking

import (
	"context"
	"slices"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// Definition is one top-level function, method or type found by a Parser.
// Lines are 1-based and inclusive.
type Definition struct {
	Name      string
	Class     string
	NodeType  string
	StartLine int
	EndLine   int
}

// Parser extracts top-level definitions from source code.
type Parser interface {
	Definitions(ctx context.Context, src []byte) ([]Definition, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, src []byte) ([]Definition, error)

// Definitions calls f.
func (f ParserFunc) Definitions(ctx context.Context, src []byte) ([]Definition, error) {
	return f(ctx, src)
}

// structuralChunks turns definitions into ast_function chunks, preceded by
// ast_global chunks for the lines no definition covers.
func structuralChunks(text string, defs []Definition, meta chunk.Metadata, budget int) []chunk.Chunk {
	if len(defs) == 0 {
		return nil
	}
	lines := splitLines(text)
	defs = slices.Clone(defs)
	slices.SortFunc(defs, func(a, b Definition) int { return a.StartLine - b.StartLine })

	covered := make([]bool, len(lines))
	var fns []chunk.Chunk
	for _, d := range defs {
		start, end := max(d.StartLine, 1), min(d.EndLine, len(lines))
		if start > end || covered[start-1] {
			continue
		}
		for i := start - 1; i < end; i++ {
			covered[i] = true
		}
		fields := chunk.Metadata{
			chunk.KeyStartLine: start,
			chunk.KeyEndLine:   end,
			chunk.KeyNodeType:  d.NodeType,
		}
		if d.Name != "" {
			fields[chunk.KeyFunctionName] = d.Name
		}
		if d.Class != "" {
			fields[chunk.KeyClassName] = d.Class
		}
		fns = append(fns, chunk.New(strings.Join(lines[start-1:end], "\n"), chunk.TypeASTFunction, meta, fields))
	}
	if len(fns) == 0 {
		return nil
	}
	return append(globalChunks(lines, covered, meta, budget), fns...)
}

type lineRun struct{ start, end int } // 0-based, end exclusive

// globalChunks gathers uncovered non-blank runs of lines into as few
// ast_global chunks as the budget allows.
func globalChunks(lines []string, covered []bool, meta chunk.Metadata, budget int) []chunk.Chunk {
	var runs []lineRun
	for i := 0; i < len(lines); {
		if covered[i] {
			i++
			continue
		}
		j := i
		for j < len(lines) && !covered[j] {
			j++
		}
		if strings.TrimSpace(strings.Join(lines[i:j], "\n")) != "" {
			runs = append(runs, lineRun{i, j})
		}
		i = j
	}

	var (
		out   []chunk.Chunk
		group []lineRun
		size  int
	)
	flush := func() {
		if len(group) == 0 {
			return
		}
		parts := make([]string, len(group))
		for k, r := range group {
			parts[k] = strings.Trim(strings.Join(lines[r.start:r.end], "\n"), "\n")
		}
		out = append(out, chunk.New(strings.Join(parts, "\n\n"), chunk.TypeASTGlobal, meta, chunk.Metadata{
			chunk.KeyStartLine: group[0].start + 1,
			chunk.KeyEndLine:   group[len(group)-1].end,
		}))
		group, size = nil, 0
	}
	for _, r := range runs {
		n := wordCount(strings.Join(lines[r.start:r.end], "\n"))
		if size+n > budget && len(group) > 0 {
			flush()
		}
		group = append(group, r)
		size += n
	}
	flush()
	return out
}

func (e *Engine) structural(lang string) Strategy {
	return func(ctx context.Context, text string, meta chunk.Metadata) ([]chunk.Chunk, error) {
		p, ok := e.parsers[lang]
		if !ok || p == nil {
			return nil, nil
		}
		defs, err := p.Definitions(ctx, []byte(text))
		if err != nil {
			return nil, err
		}
		return structuralChunks(text, defs, meta, e.profile(meta).MaxTokens), nil
	}
}
