package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the delay before re-importing after a CSV change. Editors
// often write in several bursts; the import only needs the final state.
const watchDebounce = 500 * time.Millisecond

// Watcher re-imports the catalog CSV whenever the file changes.
type Watcher struct {
	store   *Store
	csvPath string
	fsw     *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the given CSV file.
func NewWatcher(store *Store, csvPath string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{store: store, csvPath: csvPath, fsw: fsw}, nil
}

// Run watches the CSV until the context is cancelled. The containing
// directory is watched, not the file: editors that save via rename replace
// the inode, which would sever a file-level watch.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.fsw.Add(filepath.Dir(w.csvPath)); err != nil {
		return err
	}
	defer w.fsw.Close()

	slog.Info("catalog watcher started", "path", w.csvPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.csvPath) {
				continue
			}
			w.scheduleImport(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleImport(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, func() {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := w.store.ImportCSV(ctx, w.csvPath); err != nil {
			slog.Warn("catalog re-import failed", "path", w.csvPath, "error", err)
		}
	})
}
