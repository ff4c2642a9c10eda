package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain/batch"
	"github.com/kailas-cloud/coderag/internal/domain/filetype"
)

// DefaultDebounce is the quiet period before a burst of events is applied.
const DefaultDebounce = 500 * time.Millisecond

// Syncer applies file changes to the store.
type Syncer interface {
	Reingest(ctx context.Context, path string) batch.FileResult
	Remove(ctx context.Context, path string) (int, error)
}

type change int

const (
	changeNone change = iota
	changeUpsert
	changeRemove
)

// Watcher mirrors a directory tree into the store. Events for one path are
// coalesced until DefaultDebounce passes without another event.
type Watcher struct {
	root     string
	syncer   Syncer
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher over root.
func NewWatcher(root string, syncer Syncer, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{root: root, syncer: syncer, debounce: DefaultDebounce, logger: logger}
}

// WithDebounce overrides the quiet period.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Run watches until ctx is done. Pending changes are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("Watching directory", zap.String("root", w.root))

	pending := make(map[string]change)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if isDir(ev) {
				if err := w.addTree(fw, ev.Name); err != nil {
					w.logger.Warn("Watch new directory", zap.String("path", ev.Name), zap.Error(err))
				}
				continue
			}
			if c := classify(ev); c != changeNone {
				pending[ev.Name] = c
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]change) {
	for path, c := range pending {
		switch c {
		case changeUpsert:
			res := w.syncer.Reingest(ctx, path)
			if res.Status() == batch.StatusError {
				w.logger.Error("Reingest failed", zap.String("file", path), zap.Error(res.Err()))
				continue
			}
			w.logger.Info("Reingested", zap.String("file", path), zap.Int("chunks", res.Chunks()))
		case changeRemove:
			if _, err := w.syncer.Remove(ctx, path); err != nil {
				w.logger.Error("Remove failed", zap.String("file", path), zap.Error(err))
			}
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && skipDir(d.Name()) {
			return fs.SkipDir
		}
		return fw.Add(path)
	})
}

// classify maps an event to the change it implies. Hidden and unsupported
// files are ignored, as are chmod-only events.
func classify(ev fsnotify.Event) change {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || !filetype.Supported(ev.Name) {
		return changeNone
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return changeRemove
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return changeUpsert
	default:
		return changeNone
	}
}

func isDir(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(ev.Name)
	return err == nil && info.IsDir()
}
