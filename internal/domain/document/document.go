package document

import (
	"fmt"

	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// Document is one ingested source file before chunking (immutable value object).
// It is never persisted; only its chunks are.
type Document struct {
	id       string
	content  string
	metadata chunk.Metadata
}

// New validates and creates a Document.
func New(id, content string, metadata chunk.Metadata) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}
	if content == "" {
		return Document{}, fmt.Errorf("%w: document %s", domain.ErrEmptyContent, id)
	}
	return Document{id: id, content: content, metadata: metadata.Clone()}, nil
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Content returns the extracted text.
func (d Document) Content() string { return d.content }

// Metadata returns a copy of the document metadata.
func (d Document) Metadata() chunk.Metadata { return d.metadata.Clone() }

// FileType returns the normalized extension recorded at extraction time.
func (d Document) FileType() string { return d.metadata.String(chunk.KeyFileType) }

// ChunkID derives the stored id of the i-th chunk.
func (d Document) ChunkID(i int) string { return fmt.Sprintf("%s_chunk_%d", d.id, i) }
