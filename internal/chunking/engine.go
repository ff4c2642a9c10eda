// Package chunking splits extracted file text into retrievable chunks using a
// strategy selected by file type.
package chunking

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/filetype"
	"github.com/kailas-cloud/coderag/internal/metrics"
)

const (
	// ConfigWholeLimit is the content length below which a config file is one chunk.
	ConfigWholeLimit = 2000
	// ConfigBudget is the line budget for config files at or above ConfigWholeLimit.
	ConfigBudget = 800
	// WebBudget is the line budget for markup and stylesheets.
	WebBudget = 800
)

// Engine dispatches text to a chunking strategy. It is safe for concurrent use.
type Engine struct {
	profiles   map[filetype.Category]filetype.Profile
	fallback   filetype.Profile
	parsers    map[string]Parser
	patterns   map[string]LanguagePattern
	csvCeiling int
	logger     *zap.Logger

	// overrides applied to every profile once options are set; -1 is unset
	chunkSize int
	overlap   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithChunkSize sets the word budget of every category, including those
// configured with WithProfiles.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithOverlap sets the overlap of every category. It is capped below the
// category's budget.
func WithOverlap(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.overlap = n
		}
	}
}

// WithProfiles replaces per-category budgets. Categories without an entry use
// the default budget.
func WithProfiles(p map[filetype.Category]filetype.Profile) Option {
	return func(e *Engine) {
		e.profiles = make(map[filetype.Category]filetype.Profile, len(p))
		for k, v := range p {
			e.profiles[k] = v
		}
	}
}

// WithParser registers a structural parser for a language. A nil parser
// disables the structural tier for that language.
func WithParser(lang string, p Parser) Option {
	return func(e *Engine) {
		if p == nil {
			delete(e.parsers, lang)
			return
		}
		e.parsers[lang] = p
	}
}

// WithPattern registers boundary patterns for a language.
func WithPattern(lang string, p LanguagePattern) Option {
	return func(e *Engine) { e.patterns[lang] = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCSVCeiling overrides the size at which CSV files are only sampled.
func WithCSVCeiling(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.csvCeiling = n
		}
	}
}

// New creates an Engine with the built-in parsers, patterns and budgets.
func New(opts ...Option) *Engine {
	e := &Engine{
		profiles:   filetype.DefaultProfiles(),
		fallback:   filetype.DefaultProfile,
		parsers:    DefaultParsers(),
		patterns:   DefaultPatterns(),
		csvCeiling: CSVSizeCeiling,
		logger:     zap.NewNop(),
		chunkSize:  -1,
		overlap:    -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	for cat, p := range e.profiles {
		e.profiles[cat] = e.override(p)
	}
	e.fallback = e.override(e.fallback)
	return e
}

func (e *Engine) override(p filetype.Profile) filetype.Profile {
	if e.chunkSize > 0 {
		p.MaxTokens = e.chunkSize
	}
	if e.overlap >= 0 {
		p.OverlapTokens = e.overlap
	}
	if p.OverlapTokens >= p.MaxTokens {
		p.OverlapTokens = max(p.MaxTokens-1, 0)
	}
	return p
}

// Chunk splits text according to the file_type in meta. It never fails:
// a strategy that errors, panics or yields nothing degrades to line-based
// chunking, so at least one chunk is always returned.
func (e *Engine) Chunk(ctx context.Context, text string, meta chunk.Metadata) []chunk.Chunk {
	ext := meta.String(chunk.KeyFileType)
	strategy := filetype.StrategyFor(ext)

	chunks, err := e.run(ctx, strategy, ext, text, meta)
	if err != nil || len(chunks) == 0 {
		if err != nil {
			e.logger.Warn("chunking strategy failed, using line-based",
				zap.String("strategy", string(strategy)),
				zap.String("file", meta.String(chunk.KeyFilename)),
				zap.Error(err))
		}
		strategy = filetype.StrategyGeneric
		chunks = ByLines(text, meta, e.profile(meta).MaxTokens)
	}

	metrics.ChunksCreatedTotal.WithLabelValues(string(strategy)).Add(float64(len(chunks)))
	return chunks
}

func (e *Engine) run(ctx context.Context, strategy filetype.Strategy, ext, text string, meta chunk.Metadata) (chunks []chunk.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			chunks, err = nil, fmt.Errorf("%s strategy panic: %v", strategy, r)
		}
	}()

	profile := e.profile(meta)
	switch strategy {
	case filetype.StrategyCode:
		lang := filetype.Language(ext)
		return Cascade(e.logger,
			Tier{Name: "structural", Run: e.structural(lang)},
			Tier{Name: "pattern", Run: e.pattern(lang)},
			Tier{Name: "lines", Run: lineStrategy(profile.MaxTokens)},
		)(ctx, text, meta)
	case filetype.StrategyConfig:
		return Config(text, meta), nil
	case filetype.StrategyDocs:
		if strings.EqualFold(ext, ".md") {
			if out := Markdown(text, meta); len(out) > 0 {
				return out, nil
			}
		}
		return Paragraphs(text, meta, profile.MaxTokens, profile.OverlapTokens), nil
	case filetype.StrategySQL:
		return SQL(text, meta), nil
	case filetype.StrategyWeb:
		return ByLines(text, meta, WebBudget), nil
	case filetype.StrategyCSV:
		return csvWithCeiling(text, meta, e.csvCeiling), nil
	default:
		return ByLines(text, meta, profile.MaxTokens), nil
	}
}

// Config keeps small config files whole and splits larger ones by lines.
func Config(text string, meta chunk.Metadata) []chunk.Chunk {
	if len(text) >= ConfigWholeLimit {
		return ByLines(text, meta, ConfigBudget)
	}
	return []chunk.Chunk{chunk.New(text, chunk.TypeConfigComplete, meta, chunk.Metadata{
		chunk.KeyStartLine: 1,
		chunk.KeyEndLine:   len(splitLines(text)),
	})}
}

func (e *Engine) profile(meta chunk.Metadata) filetype.Profile {
	if p, ok := e.profiles[filetype.CategoryOf(meta.String(chunk.KeyFileType))]; ok {
		return p
	}
	return e.fallback
}
