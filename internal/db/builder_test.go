package db

import (
	"testing"
)

func chunkIndex() *IndexBuilder {
	return NewIndex("coderag:code_assistant_collection:idx", "coderag:code_assistant_collection:").
		ExactTag("filename").
		Tag("file_type", "chunk_type", "document_id").
		Text("__content").
		Vector("__vector", "vector", 384, 16, 200)
}

func TestIndexBuilder_ChunkSchema(t *testing.T) {
	idx, err := chunkIndex().Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Prefix != "coderag:code_assistant_collection:" {
		t.Errorf("prefix = %q", idx.Prefix)
	}
	if len(idx.Fields) != 6 {
		t.Fatalf("fields count = %d, want 6", len(idx.Fields))
	}
	if f := idx.Fields[0]; f.Name != "filename" || !f.CaseSensitive {
		t.Errorf("filename field = %+v, want case-sensitive tag", f)
	}
	for i, name := range []string{"file_type", "chunk_type", "document_id"} {
		f := idx.Fields[i+1]
		if f.Name != name || f.Type != IndexFieldTag || f.CaseSensitive {
			t.Errorf("field[%d] = %+v, want %s TAG", i+1, f, name)
		}
	}
	v := idx.Fields[5]
	if v.Alias != "vector" || v.M != 16 || v.EFConstruct != 200 {
		t.Errorf("unexpected vector field %+v", v)
	}
	if idx.VectorDim() != 384 {
		t.Errorf("VectorDim = %d, want 384", idx.VectorDim())
	}
}

func TestIndexBuilder_BuildCopies(t *testing.T) {
	b := chunkIndex()
	first, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	b.Tag("extra")
	if len(first.Fields) != 6 {
		t.Errorf("built definition changed after Build: %d fields", len(first.Fields))
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		def  IndexDefinition
	}{
		{"empty name", IndexDefinition{Prefix: "p:", Fields: []IndexField{{Name: "a"}}}},
		{"bad name", IndexDefinition{Name: "has space", Prefix: "p:", Fields: []IndexField{{Name: "a"}}}},
		{"no prefix", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "a"}}}},
		{"no fields", IndexDefinition{Name: "idx", Prefix: "p:"}},
		{"empty field", IndexDefinition{Name: "idx", Prefix: "p:", Fields: []IndexField{{}}}},
		{"duplicate alias", IndexDefinition{Name: "idx", Prefix: "p:", Fields: []IndexField{
			{Name: "a", Alias: "x"}, {Name: "b", Alias: "x"},
		}}},
		{"vector without dim", IndexDefinition{Name: "idx", Prefix: "p:", Fields: []IndexField{
			{Name: "v", Type: IndexFieldVector},
		}}},
		{"two vectors", IndexDefinition{Name: "idx", Prefix: "p:", Fields: []IndexField{
			{Name: "v1", Type: IndexFieldVector, Dim: 3},
			{Name: "v2", Type: IndexFieldVector, Dim: 3},
		}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.def.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "coderag:col:idx", "a-b_c"}
	invalid := []string{"", "a b", "a/b", "ключ"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true, want false", s)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpSearch, Err: ErrIndexNotFound}
	if err.Error() != "FT.SEARCH: db: index not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Unwrap() != ErrIndexNotFound {
		t.Error("expected unwrap to return the cause")
	}
}
