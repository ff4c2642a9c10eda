package chunking

import (
	"context"
	"regexp"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// LanguagePattern describes boundary detection for one language. Boundaries
// are matched against the whitespace-trimmed line; Names are tried in order
// against the first line of a chunk and the first submatch wins.
type LanguagePattern struct {
	Boundaries []*regexp.Regexp
	Names      []*regexp.Regexp
}

var javascriptPattern = LanguagePattern{
	Boundaries: []*regexp.Regexp{
		regexp.MustCompile(`^(function\s+\w+.*?\{)`),
		regexp.MustCompile(`^(const\s+\w+\s*=\s*.*?=>)`),
		regexp.MustCompile(`^(class\s+\w+.*?\{)`),
	},
	Names: []*regexp.Regexp{
		regexp.MustCompile(`function\s+(\w+)`),
		regexp.MustCompile(`const\s+(\w+)`),
		regexp.MustCompile(`class\s+(\w+)`),
	},
}

// DefaultPatterns returns the built-in pattern table. New languages are added
// by extending the map.
func DefaultPatterns() map[string]LanguagePattern {
	return map[string]LanguagePattern{
		"python": {
			Boundaries: []*regexp.Regexp{
				regexp.MustCompile(`^(def\s+\w+.*?:)`),
				regexp.MustCompile(`^(class\s+\w+.*?:)`),
				regexp.MustCompile(`^(async\s+def\s+\w+.*?:)`),
			},
			Names: []*regexp.Regexp{
				regexp.MustCompile(`def\s+(\w+)`),
				regexp.MustCompile(`class\s+(\w+)`),
			},
		},
		"javascript": javascriptPattern,
		"typescript": javascriptPattern,
		"java": {
			Boundaries: []*regexp.Regexp{
				regexp.MustCompile(`^(\s*public\s+.*?\{)`),
				regexp.MustCompile(`^(\s*private\s+.*?\{)`),
				regexp.MustCompile(`^(\s*protected\s+.*?\{)`),
				regexp.MustCompile(`^(\s*class\s+\w+.*?\{)`),
			},
			Names: []*regexp.Regexp{
				regexp.MustCompile(`class\s+(\w+)`),
				regexp.MustCompile(`\w+\s+(\w+)\s*\(`),
			},
		},
	}
}

func (p LanguagePattern) isBoundary(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, re := range p.Boundaries {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func (p LanguagePattern) name(line string) string {
	for _, re := range p.Names {
		if m := re.FindStringSubmatch(line); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// patternChunks splits at boundary lines. Each chunk runs to the line before
// the next boundary; the last runs to EOF. Non-blank lines before the first
// boundary form a leading preamble chunk.
func patternChunks(text string, p LanguagePattern, meta chunk.Metadata) []chunk.Chunk {
	lines := splitLines(text)
	var bounds []int
	for i, line := range lines {
		if p.isBoundary(line) {
			bounds = append(bounds, i)
		}
	}
	if len(bounds) == 0 {
		return nil
	}

	var out []chunk.Chunk
	if pre := strings.Join(lines[:bounds[0]], "\n"); strings.TrimSpace(pre) != "" {
		out = append(out, chunk.New(pre, chunk.TypeRegexFunction, meta, chunk.Metadata{
			chunk.KeyStartLine: 1,
			chunk.KeyEndLine:   bounds[0],
			chunk.KeyNodeType:  "preamble",
		}))
	}
	for i, start := range bounds {
		end := len(lines)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		fields := chunk.Metadata{
			chunk.KeyStartLine: start + 1,
			chunk.KeyEndLine:   end,
		}
		if name := p.name(strings.TrimSpace(lines[start])); name != "" {
			fields[chunk.KeyFunctionName] = name
		}
		out = append(out, chunk.New(strings.Join(lines[start:end], "\n"), chunk.TypeRegexFunction, meta, fields))
	}
	return out
}

func (e *Engine) pattern(lang string) Strategy {
	return func(_ context.Context, text string, meta chunk.Metadata) ([]chunk.Chunk, error) {
		p, ok := e.patterns[lang]
		if !ok {
			return nil, nil
		}
		return patternChunks(text, p, meta), nil
	}
}
