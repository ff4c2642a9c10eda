package chunking

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

var (
	headingRe       = regexp.MustCompile(`^#{1,6}\s+`)
	headingMarkerRe = regexp.MustCompile(`^#+\s*`)
	paragraphSepRe  = regexp.MustCompile(`\n\s*\n`)
)

// Markdown splits at heading lines. A section spans its heading to the line
// before the next heading. Returns nil when there are no headings.
func Markdown(text string, meta chunk.Metadata) []chunk.Chunk {
	lines := splitLines(text)
	var heads []int
	for i, line := range lines {
		if headingRe.MatchString(line) {
			heads = append(heads, i)
		}
	}
	if len(heads) == 0 {
		return nil
	}

	var out []chunk.Chunk
	if pre := strings.Join(lines[:heads[0]], "\n"); strings.TrimSpace(pre) != "" {
		out = append(out, chunk.New(pre, chunk.TypeMarkdownSection, meta, chunk.Metadata{
			chunk.KeyStartLine:    1,
			chunk.KeyEndLine:      heads[0],
			chunk.KeySectionTitle: "",
		}))
	}
	for i, start := range heads {
		end := len(lines)
		if i+1 < len(heads) {
			end = heads[i+1]
		}
		out = append(out, chunk.New(strings.Join(lines[start:end], "\n"), chunk.TypeMarkdownSection, meta, chunk.Metadata{
			chunk.KeyStartLine:    start + 1,
			chunk.KeyEndLine:      end,
			chunk.KeySectionTitle: strings.TrimSpace(headingMarkerRe.ReplaceAllString(lines[start], "")),
		}))
	}
	return out
}

// Paragraphs groups blank-line separated paragraphs up to budget words. When
// overlap is positive each new group starts with the last paragraph of the
// previous one.
func Paragraphs(text string, meta chunk.Metadata, budget, overlap int) []chunk.Chunk {
	var paras []string
	for _, p := range paragraphSepRe.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paras = append(paras, p)
		}
	}

	var (
		out     []chunk.Chunk
		current []string
		size    int
		fresh   int // paragraphs added since the last emit
	)
	emit := func() {
		out = append(out, chunk.New(strings.Join(current, "\n\n"), chunk.TypeParagraphGroup, meta, chunk.Metadata{
			chunk.KeyParagraphCount: len(current),
		}))
	}

	for _, p := range paras {
		n := wordCount(p)
		if size+n > budget && fresh > 0 {
			emit()
			if overlap > 0 {
				last := current[len(current)-1]
				current, size = []string{last}, wordCount(last)
			} else {
				current, size = nil, 0
			}
			fresh = 0
		}
		current = append(current, p)
		size += n
		fresh++
	}
	if fresh > 0 {
		emit()
	}
	return out
}
