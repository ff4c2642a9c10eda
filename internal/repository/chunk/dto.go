package chunk

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
)

// Hash field names of a stored chunk.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
	fieldMeta    = "__meta"
)

// indexedTags are the metadata keys copied to top-level TAG fields.
var indexedTags = []string{
	domchunk.KeyFilename,
	domchunk.KeyFileType,
	domchunk.KeyChunkType,
	domchunk.KeyDocumentID,
}

// buildHashFields converts a record into a flat map for HSET.
func buildHashFields(rec domchunk.Record) (map[string]string, error) {
	meta, err := json.Marshal(rec.Chunk.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	m := make(map[string]string, 3+len(indexedTags))
	m[fieldContent] = rec.Chunk.Content
	m[fieldVector] = vectorToBytes(rec.Vector)
	m[fieldMeta] = string(meta)
	for _, k := range indexedTags {
		if v := rec.Chunk.Metadata.String(k); v != "" {
			m[k] = v
		}
	}
	return m, nil
}

// parseHashFields rebuilds a chunk from returned fields. Numbers in the
// metadata decode as json.Number so integer keys keep their type.
func parseHashFields(m map[string]string) (domchunk.Chunk, error) {
	c := domchunk.Chunk{Content: m[fieldContent], Metadata: domchunk.Metadata{}}
	if raw := m[fieldMeta]; raw != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		if err := dec.Decode(&c.Metadata); err != nil {
			return domchunk.Chunk{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	for _, k := range indexedTags {
		if _, ok := c.Metadata[k]; !ok && m[k] != "" {
			c.Metadata[k] = m[k]
		}
	}
	return c, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
