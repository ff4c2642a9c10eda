// Package ingest runs files through extraction, chunking, embedding and
// storage, one small group at a time.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/domain/batch"
	domchunk "github.com/kailas-cloud/coderag/internal/domain/chunk"
	"github.com/kailas-cloud/coderag/internal/domain/filetype"
	"github.com/kailas-cloud/coderag/internal/domain/search/filter"
	"github.com/kailas-cloud/coderag/internal/metrics"
	"github.com/kailas-cloud/coderag/internal/usecase/vectorstore"
)

// Sources recorded in chunk metadata.
const (
	SourceUpload    = "upload"
	SourceDirectory = "directory"
	SourceWatch     = "watch"
)

// Defaults.
const (
	DefaultBatchSize      = 5
	DefaultEmbedBatchSize = 10
	DefaultMaxFileSize    = 50 << 20
)

var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"venv":         true,
}

// File is one uploaded file.
type File struct {
	Name string
	Data []byte
}

// Config tunes batching and validation.
type Config struct {
	BatchSize      int
	EmbedBatchSize int
	MaxFileSize    int64
}

// Stats describes ingestion state.
type Stats struct {
	LastRun             *batch.Summary    `json:"last_run,omitempty"`
	Store               vectorstore.Stats `json:"store"`
	SupportedExtensions []string          `json:"supported_extensions"`
	MaxFileSizeMB       int               `json:"max_file_size_mb"`
}

// source is a file that is loaded only when its group is processed.
type source struct {
	name string
	size int64
	load func() ([]byte, error)
}

// Service ingests files. Runs are serialized so Stats reports a whole run.
type Service struct {
	extractor Extractor
	chunker   Chunker
	embedder  domain.Embedder
	store     Store
	cfg       Config
	newID     func() string
	now       func() time.Time
	logger    *zap.Logger

	mu      sync.Mutex
	lastRun *batch.Summary
}

// New creates an ingestion service. Zero config fields take the defaults.
func New(
	extractor Extractor, chunker Chunker, embedder domain.Embedder, store Store,
	cfg Config, logger *zap.Logger,
) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		cfg:       cfg,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// IngestFiles ingests uploaded files. A failing file is recorded in the
// summary and never aborts the others.
func (s *Service) IngestFiles(ctx context.Context, files []File) batch.Summary {
	sources := make([]source, len(files))
	for i, f := range files {
		data := f.Data
		sources[i] = source{
			name: f.Name,
			size: int64(len(data)),
			load: func() ([]byte, error) { return data, nil },
		}
	}
	return s.run(ctx, sources, SourceUpload, nil)
}

// IngestDir walks root and ingests every supported file, replacing chunks a
// previous run stored for it. Hidden directories and dependency folders are
// not descended into; unsupported files are skipped without counting as
// failures.
func (s *Service) IngestDir(ctx context.Context, root string) (batch.Summary, error) {
	var sources []source
	var skipped []batch.FileResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Walk error", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := filepath.ToSlash(path)
		if !filetype.Supported(name) {
			skipped = append(skipped, batch.NewSkipped(name, domain.ErrUnsupportedFileType))
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.logger.Warn("Stat failed", zap.String("path", path), zap.Error(err))
			return nil
		}
		sources = append(sources, source{
			name: name,
			size: info.Size(),
			load: func() ([]byte, error) { return os.ReadFile(path) },
		})
		return nil
	})
	if err != nil {
		return batch.Summary{}, fmt.Errorf("walk %s: %w", root, err)
	}

	for range skipped {
		metrics.IngestFilesTotal.WithLabelValues(string(batch.StatusSkipped)).Inc()
	}
	return s.run(ctx, sources, SourceDirectory, skipped), nil
}

// Reingest replaces the stored chunks of the file at path. A file that no
// longer exists only has its chunks removed.
func (s *Service) Reingest(ctx context.Context, path string) batch.FileResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.ToSlash(path)
	if _, err := s.Remove(ctx, path); err != nil {
		return batch.NewError(name, err)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return batch.NewSkipped(name, err)
	}
	if err != nil {
		return batch.NewError(name, fmt.Errorf("stat: %w", err))
	}
	if err := s.validate(source{name: name, size: info.Size()}); err != nil {
		res := batch.NewSkipped(name, err)
		s.countResult(res)
		return res
	}
	src := source{
		name: name,
		size: info.Size(),
		load: func() ([]byte, error) { return os.ReadFile(path) },
	}
	res := s.processOne(ctx, src, SourceWatch, s.now())
	s.countResult(res)
	return res
}

// Remove deletes the stored chunks of the file at path.
func (s *Service) Remove(ctx context.Context, path string) (int, error) {
	expr, err := filter.Equals(map[string]string{domchunk.KeyFilename: filepath.ToSlash(path)})
	if err != nil {
		return 0, fmt.Errorf("build filter: %w", err)
	}
	n, err := s.store.DeleteByFilter(ctx, expr)
	if err != nil {
		return 0, fmt.Errorf("delete chunks of %s: %w", path, err)
	}
	if n > 0 {
		s.logger.Info("Removed stale chunks", zap.String("file", path), zap.Int("chunks", n))
	}
	return n, nil
}

// Stats returns the last run summary and the store statistics.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()

	return Stats{
		LastRun:             last,
		Store:               st,
		SupportedExtensions: filetype.SupportedExtensions(),
		MaxFileSizeMB:       int(s.cfg.MaxFileSize >> 20),
	}, nil
}

func (s *Service) run(ctx context.Context, sources []source, origin string, prior []batch.FileResult) batch.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	results := append([]batch.FileResult(nil), prior...)
	var valid []source
	var totalBytes int64

	for _, src := range sources {
		if err := s.validate(src); err != nil {
			res := batch.NewError(src.name, err)
			s.countResult(res)
			results = append(results, res)
			continue
		}
		valid = append(valid, src)
		totalBytes += src.size
	}

	s.logger.Info("Ingestion started",
		zap.String("source", origin),
		zap.Int("files", len(valid)),
		zap.Int("rejected", len(sources)-len(valid)))

	for i := 0; i < len(valid); i += s.cfg.BatchSize {
		end := min(i+s.cfg.BatchSize, len(valid))
		s.logger.Debug("Processing group",
			zap.Int("group", i/s.cfg.BatchSize+1),
			zap.Int("groups", (len(valid)+s.cfg.BatchSize-1)/s.cfg.BatchSize))

		for _, src := range valid[i:end] {
			if err := ctx.Err(); err != nil {
				results = append(results, batch.NewError(src.name, err))
				continue
			}
			if origin == SourceDirectory {
				// Directory runs repeat on every start; replace, never append.
				if _, err := s.Remove(ctx, src.name); err != nil {
					res := batch.NewError(src.name, err)
					s.countResult(res)
					results = append(results, res)
					continue
				}
			}
			res := s.processOne(ctx, src, origin, started)
			s.countResult(res)
			results = append(results, res)
		}
	}

	summary := batch.Summarize(results, totalBytes, started, s.now())
	s.lastRun = &summary
	s.logger.Info("Ingestion finished",
		zap.String("status", summary.Status),
		zap.Int("files_processed", summary.FilesProcessed),
		zap.Int("files_failed", summary.FilesFailed),
		zap.Int("chunks_created", summary.ChunksCreated))
	return summary
}

func (s *Service) validate(src source) error {
	if _, err := filetype.Classify(src.name); err != nil {
		return err
	}
	if src.size > s.cfg.MaxFileSize {
		return fmt.Errorf("%w (%.1fMB)", domain.ErrFileTooLarge, float64(src.size)/1024/1024)
	}
	if src.size == 0 {
		return domain.ErrEmptyContent
	}
	return nil
}

func (s *Service) processOne(ctx context.Context, src source, origin string, stamp time.Time) batch.FileResult {
	n, err := s.process(ctx, src, origin, stamp)
	if err != nil {
		s.logger.Error("Failed to ingest file", zap.String("file", src.name), zap.Error(err))
		return batch.NewError(src.name, err)
	}
	s.logger.Info("File ingested", zap.String("file", src.name), zap.Int("chunks", n))
	return batch.NewOK(src.name, n)
}

func (s *Service) process(ctx context.Context, src source, origin string, stamp time.Time) (int, error) {
	data, err := src.load()
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	if len(data) == 0 {
		return 0, domain.ErrEmptyContent
	}

	ext, err := s.extractor.Extract(ctx, src.name, data)
	if err != nil {
		return 0, err
	}

	meta := ext.Metadata.Merge(domchunk.Metadata{
		domchunk.KeyUploadTimestamp: stamp.Format(time.RFC3339),
		domchunk.KeySource:          origin,
	})
	text := ext.Text
	if strings.EqualFold(ext.Info.Ext, ".csv") {
		text = ext.Raw
	}

	chunks := s.chunker.Chunk(ctx, text, meta)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks produced", domain.ErrEmptyContent)
	}

	stored := 0
	for i := 0; i < len(chunks); i += s.cfg.EmbedBatchSize {
		group := chunks[i:min(i+s.cfg.EmbedBatchSize, len(chunks))]
		if err := s.embedAndStore(ctx, group); err != nil {
			return stored, err
		}
		stored += len(group)
	}
	return stored, nil
}

// embedAndStore embeds and stores one embedding sub-batch.
func (s *Service) embedAndStore(ctx context.Context, chunks []domchunk.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	emb, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(emb.Embeddings) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingProviderError, len(emb.Embeddings), len(chunks))
	}

	records := make([]domchunk.Record, len(chunks))
	for i, c := range chunks {
		records[i] = domchunk.Record{ID: s.newID(), Chunk: c, Vector: emb.Embeddings[i]}
	}
	if _, err := s.store.Add(ctx, records); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	metrics.IngestChunksTotal.Add(float64(len(records)))
	return nil
}

func (s *Service) countResult(res batch.FileResult) {
	metrics.IngestFilesTotal.WithLabelValues(string(res.Status())).Inc()
}

func skipDir(name string) bool {
	return skipDirs[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}
