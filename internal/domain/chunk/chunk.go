// Package chunk defines the retrievable unit produced by the chunking engine.
package chunk

import (
	"encoding/json"
	"maps"
	"strconv"
)

// Type tags how a chunk was produced.
type Type string

// Chunk types.
const (
	TypeASTFunction        Type = "ast_function"
	TypeASTGlobal          Type = "ast_global"
	TypeRegexFunction      Type = "regex_function"
	TypeLineBased          Type = "line_based"
	TypeConfigComplete     Type = "config_complete"
	TypeMarkdownSection    Type = "markdown_section"
	TypeParagraphGroup     Type = "paragraph_group"
	TypeSQLStatement       Type = "sql_statement"
	TypeCSVHeader          Type = "csv_header"
	TypeCSVSample          Type = "csv_sample"
	TypeCSVHeaderLarge     Type = "csv_header_large"
	TypeCSVSampleLarge     Type = "csv_sample_large"
	TypeCSVStatistics      Type = "csv_statistics"
	TypeCSVHeaderVeryLarge Type = "csv_header_very_large"
	TypeCSVSampleVeryLarge Type = "csv_sample_very_large"
	TypeCSVFallback        Type = "csv_fallback"
	TypeCSVLargeFallback   Type = "csv_large_fallback"
)

// Well-known metadata keys. Any key may be absent; absence means "not applicable".
const (
	KeyFilename        = "filename"
	KeyFileType        = "file_type"
	KeyFileSize        = "file_size"
	KeyEncoding        = "encoding"
	KeySource          = "source"
	KeyUploadTimestamp = "upload_timestamp"
	KeyDocumentID      = "document_id"
	KeyLanguage        = "language"

	KeyChunkType      = "chunk_type"
	KeyStartLine      = "start_line"
	KeyEndLine        = "end_line"
	KeyLineCount      = "line_count"
	KeyFunctionName   = "function_name"
	KeyClassName      = "class_name"
	KeyNodeType       = "node_type"
	KeySectionTitle   = "section_title"
	KeyStatementType  = "statement_type"
	KeyStatementIndex = "statement_index"
	KeyParagraphCount = "paragraph_count"

	KeyRowCount        = "row_count"
	KeyColumnCount     = "column_count"
	KeyColumns         = "columns_str"
	KeySampleSize      = "sample_size"
	KeyEstimatedRows   = "estimated_rows"
	KeyFileSizeBytes   = "file_size_bytes"
	KeyIsLargeDataset  = "is_large_dataset"
	KeyProcessingError = "processing_error"
)

// Metadata is an open string-keyed mapping of scalar values.
type Metadata map[string]any

// Clone returns a shallow copy; values are scalars so this is a full copy.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}

// Merge returns a copy of m overlaid with extra.
func (m Metadata) Merge(extra Metadata) Metadata {
	out := m.Clone()
	maps.Copy(out, extra)
	return out
}

// String returns the value under key rendered as a string.
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case Type:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Int returns an integer value; ok is false when the key is absent or not numeric.
func (m Metadata) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool returns a boolean value; absent keys are false.
func (m Metadata) Bool(key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// ChunkType returns the chunk_type tag.
func (m Metadata) ChunkType() Type { return Type(m.String(KeyChunkType)) }

// Chunk is the atomic retrievable unit. Content is never empty.
type Chunk struct {
	Content  string
	Metadata Metadata
}

// New builds a chunk whose metadata is parent merged with the chunk-specific fields
// and tagged with typ.
func New(content string, typ Type, parent, fields Metadata) Chunk {
	meta := parent.Merge(fields)
	meta[KeyChunkType] = string(typ)
	return Chunk{Content: content, Metadata: meta}
}

// Lines returns the recorded 1-based line range; ok is false when absent.
func (c Chunk) Lines() (start, end int, ok bool) {
	s, okS := c.Metadata.Int(KeyStartLine)
	e, okE := c.Metadata.Int(KeyEndLine)
	return s, e, okS && okE
}

// Type returns the chunk_type tag.
func (c Chunk) Type() Type { return c.Metadata.ChunkType() }

// Record is a chunk paired with its stored id and embedding.
type Record struct {
	ID     string
	Chunk  Chunk
	Vector []float32
}
