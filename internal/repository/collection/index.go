package collection

import (
	"github.com/kailas-cloud/coderag/internal/db"
)

// Indexed TAG fields of a chunk record. File names match case-sensitively.
var (
	exactTagFields = []string{"filename"}
	tagFields      = []string{"file_type", "chunk_type", "document_id"}
)

// buildIndex creates the FT index definition for a chunk collection:
// TAG metadata fields, TEXT content for BM25 and an HNSW cosine vector field.
func (r *Repo) buildIndex(name string, dim int) (*db.IndexDefinition, error) {
	return db.NewIndex(r.indexName(name), r.recordPrefix(name)).
		ExactTag(exactTagFields...).
		Tag(tagFields...).
		Text("__content").
		Vector("__vector", "vector", dim, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
}
