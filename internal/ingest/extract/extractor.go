// Package extract turns raw file bytes into normalized text for chunking.
package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/filetype"
	"github.com/kailas-cloud/coderag/internal/ingest/encoding"
)

// Placeholders substituted for content that cannot be represented as text.
const (
	EmptyFile     = "# Empty file"
	EmptyPDF      = "# Empty PDF or text extraction failed"
	EmptyDocument = "# Empty document"
)

var configKinds = map[string]string{
	".json":       "JSON Configuration",
	".yaml":       "YAML Configuration",
	".yml":        "YAML Configuration",
	".toml":       "TOML Configuration",
	".ini":        "INI Configuration",
	".xml":        "XML Configuration",
	".properties": "Properties Configuration",
}

// Extraction is the normalized text of one file.
type Extraction struct {
	// Text is never empty.
	Text string
	// Raw is the decoded file text before any summarization. Tabular
	// chunking works on Raw rather than on the summary in Text.
	Raw      string
	Metadata chunk.Metadata
	Info     filetype.Info
}

// Extractor converts file bytes to text per file category.
type Extractor struct {
	detector *encoding.Detector
	logger   *zap.Logger
}

// New creates an Extractor.
func New(detector *encoding.Detector, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if detector == nil {
		detector = encoding.New(logger)
	}
	return &Extractor{detector: detector, logger: logger}
}

// Extract produces text and base metadata for one file. The only error is an
// unsupported file type; every other failure is rendered into the text.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte) (Extraction, error) {
	info, err := filetype.Classify(name)
	if err != nil {
		return Extraction{}, err
	}

	enc := e.detector.Detect(data)
	meta := chunk.Metadata{
		chunk.KeyFilename: name,
		chunk.KeyFileType: info.Ext,
		chunk.KeyFileSize: len(data),
		chunk.KeyEncoding: enc,
	}
	if lang := filetype.Language(info.Ext); lang != "text" {
		meta[chunk.KeyLanguage] = lang
	}

	out := Extraction{Metadata: meta, Info: info}
	switch info.Ext {
	case ".pdf":
		out.Text = e.guard(name, "PDF", func() (string, error) { return extractPDF(data) })
	case ".docx":
		out.Text = e.guard(name, "DOCX", func() (string, error) { return extractDOCX(data) })
	case ".xlsx":
		out.Text = e.guard(name, "Excel", func() (string, error) { return summarizeExcel(data) })
	case ".db":
		out.Text = fmt.Sprintf("# Binary database file: %s (%d bytes)", name, len(data))
	case ".csv":
		out.Raw = encoding.Decode(data, enc)
		out.Text = e.guard(name, "CSV", func() (string, error) { return summarizeCSV(out.Raw) })
	default:
		out.Raw = encoding.Decode(data, enc)
		out.Text = textFor(info, out.Raw)
	}

	if strings.TrimSpace(out.Text) == "" {
		out.Text = EmptyFile
	}
	if out.Raw == "" {
		out.Raw = out.Text
	}
	return out, ctx.Err()
}

func textFor(info filetype.Info, text string) string {
	switch info.Category {
	case filetype.CategoryConfig:
		kind, ok := configKinds[info.Ext]
		if !ok {
			kind = "Configuration"
		}
		return fmt.Sprintf("# %s File\n\n%s", kind, text)
	case filetype.CategoryDatabase:
		return "-- SQL Database Script\n\n" + text
	default:
		if strings.TrimSpace(text) == "" {
			return EmptyFile
		}
		return text
	}
}

// guard runs a binary extractor and converts errors and panics into placeholder text.
func (e *Extractor) guard(name, kind string, fn func() (string, error)) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extractor panic", zap.String("file", name), zap.Any("panic", r))
			text = fmt.Sprintf("# Error reading %s: %v", kind, r)
		}
	}()
	text, err := fn()
	if err != nil {
		e.logger.Error("extraction failed", zap.String("file", name), zap.String("kind", kind), zap.Error(err))
		return fmt.Sprintf("# Error reading %s: %v", kind, err)
	}
	return text
}
