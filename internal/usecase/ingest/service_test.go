package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/coderag/internal/domain/batch"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
)

const goSource = "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"

func TestIngestFiles_MixedBatch(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{MaxFileSize: 1024})

	summary := svc.IngestFiles(context.Background(), []File{
		{Name: "main.go", Data: []byte(goSource)},
		{Name: "tool.exe", Data: []byte("MZ")},
		{Name: "empty.md", Data: nil},
		{Name: "big.txt", Data: []byte(strings.Repeat("x", 2048))},
	})

	assert.Equal(t, "Success", summary.Status)
	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Equal(t, 3, summary.FilesFailed)
	require.Len(t, summary.FailedFiles, 3)
	assert.True(t, strings.HasPrefix(summary.FailedFiles[0], "tool.exe: unsupported file type"))
	assert.Contains(t, summary.FailedFiles[1], "empty.md: empty content")
	assert.Contains(t, summary.FailedFiles[2], "big.txt: file too large")
	assert.Equal(t, len(store.records), summary.ChunksCreated)

	require.NotEmpty(t, store.records)
	rec := store.records[0]
	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, SourceUpload, rec.Chunk.Metadata.String(domchunk.KeySource))
	assert.Equal(t, "2026-03-01T10:00:00Z", rec.Chunk.Metadata.String(domchunk.KeyUploadTimestamp))
	assert.Equal(t, ".go", rec.Chunk.Metadata.String(domchunk.KeyFileType))
}

func TestIngestFiles_FailingFileDoesNotAbortBatch(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{failOn: "poison"}, store, Config{})

	summary := svc.IngestFiles(context.Background(), []File{
		{Name: "a.txt", Data: []byte("first file")},
		{Name: "b.txt", Data: []byte("poison pill")},
		{Name: "c.txt", Data: []byte("third file")},
	})

	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Equal(t, 1, summary.FilesFailed)
	require.Len(t, summary.FailedFiles, 1)
	assert.Contains(t, summary.FailedFiles[0], "b.txt")
	assert.Equal(t, map[string]int{"a.txt": 1, "c.txt": 1}, store.files())
}

func TestIngestFiles_EmbedSubBatches(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	svc := newTestService(emb, store, Config{EmbedBatchSize: 2})

	var b strings.Builder
	for i := range 5 {
		b.WriteString("# Section ")
		b.WriteString(string(rune('A' + i)))
		b.WriteString("\nbody\n")
	}
	summary := svc.IngestFiles(context.Background(), []File{{Name: "doc.md", Data: []byte(b.String())}})

	assert.Equal(t, 5, summary.ChunksCreated)
	assert.Equal(t, []int{2, 2, 1}, emb.batches)
}

func TestIngestFiles_CSVChunksRawText(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	summary := svc.IngestFiles(context.Background(), []File{
		{Name: "data.csv", Data: []byte("id,name\n1,a\n2,b\n")},
	})

	require.Equal(t, 1, summary.FilesProcessed)
	var types []domchunk.Type
	for _, r := range store.records {
		types = append(types, r.Chunk.Type())
	}
	assert.Equal(t, []domchunk.Type{domchunk.TypeCSVHeader, domchunk.TypeCSVSample}, types)
}

func TestIngestFiles_NothingValid(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeStore{}, Config{})

	summary := svc.IngestFiles(context.Background(), nil)

	assert.Equal(t, "No valid files to process", summary.Status)
	assert.NotNil(t, summary.FailedFiles)
}

func TestIngestFiles_StoreError(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeStore{addErr: assert.AnError}, Config{})

	summary := svc.IngestFiles(context.Background(), []File{{Name: "a.txt", Data: []byte("x")}})

	assert.Equal(t, 0, summary.FilesProcessed)
	assert.Equal(t, 1, summary.FilesFailed)
	assert.Equal(t, "Error: all files failed", summary.Status)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngestDir_SkipsHiddenAndDependencies(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.go"), goSource)
	writeFile(t, filepath.Join(root, "README.md"), "# Readme\nhello\n")
	writeFile(t, filepath.Join(root, ".git", "config.yaml"), "a: 1\n")
	writeFile(t, filepath.Join(root, "node_modules", "x", "index.js"), "module.exports = 1\n")
	writeFile(t, filepath.Join(root, "vendor", "lib.go"), "package lib\n")
	writeFile(t, filepath.Join(root, "image.bin"), "\x00\x01")

	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	summary, err := svc.IngestDir(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FilesProcessed)
	assert.Zero(t, summary.FilesFailed)
	files := store.files()
	assert.Contains(t, files, filepath.ToSlash(filepath.Join(root, "src", "main.go")))
	assert.Contains(t, files, filepath.ToSlash(filepath.Join(root, "README.md")))
	assert.Len(t, files, 2)
	for _, r := range store.records {
		assert.Equal(t, SourceDirectory, r.Chunk.Metadata.String(domchunk.KeySource))
	}
}

func TestIngestDir_RerunReplacesChunks(t *testing.T) {
	root := t.TempDir()
	readme := filepath.Join(root, "README.md")
	writeFile(t, readme, "# Readme\nhello\n")
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	_, err := svc.IngestDir(context.Background(), root)
	require.NoError(t, err)
	first := len(store.records)
	require.Positive(t, first)

	summary, err := svc.IngestDir(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FilesProcessed)
	assert.Len(t, store.records, first)
	require.Len(t, store.deleted, 2)
	assert.Equal(t, filepath.ToSlash(readme), store.deleted[1].Must()[0].Match())
}

func TestIngestFiles_UploadsDoNotDelete(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	svc.IngestFiles(context.Background(), []File{{Name: "a.txt", Data: []byte("hello")}})

	assert.Empty(t, store.deleted)
	assert.Len(t, store.records, 1)
}

func TestIngestDir_MissingRoot(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeStore{}, Config{})

	summary, err := svc.IngestDir(context.Background(), filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.Equal(t, "No valid files to process", summary.Status)
}

func TestReingest_ReplacesChunks(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "new content")
	store := &fakeStore{deleteN: 3}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	res := svc.Reingest(context.Background(), path)

	assert.Equal(t, batch.StatusOK, res.Status())
	assert.Equal(t, 1, res.Chunks())
	require.Len(t, store.deleted, 1)
	must := store.deleted[0].Must()
	require.Len(t, must, 1)
	assert.Equal(t, domchunk.KeyFilename, must[0].Key())
	assert.Equal(t, filepath.ToSlash(path), must[0].Match())
	require.Len(t, store.records, 1)
	assert.Equal(t, SourceWatch, store.records[0].Chunk.Metadata.String(domchunk.KeySource))
}

func TestReingest_VanishedFileOnlyRemoves(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	res := svc.Reingest(context.Background(), filepath.Join(t.TempDir(), "gone.go"))

	assert.Equal(t, batch.StatusSkipped, res.Status())
	assert.Len(t, store.deleted, 1)
	assert.Empty(t, store.records)
}

func TestStats(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(&fakeEmbedder{}, store, Config{})

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.LastRun)
	assert.Equal(t, 50, st.MaxFileSizeMB)
	assert.Contains(t, st.SupportedExtensions, ".go")

	svc.IngestFiles(context.Background(), []File{{Name: "a.txt", Data: []byte("x")}})

	st, err = svc.Stats(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, 1, st.LastRun.FilesProcessed)
	assert.Equal(t, 1, st.Store.TotalChunks)
}
