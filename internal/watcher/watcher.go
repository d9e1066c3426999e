// Package watcher re-runs analyses when snapshot files change on disk.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"l2domains/internal/loader"
)

// DefaultDebounce is how long the watcher waits for changes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a snapshot file or directory for changes
type Watcher struct {
	path     string
	onChange func(ctx context.Context)
	debounce time.Duration
	logger   *zap.Logger
}

// New creates a new snapshot watcher
func New(path string, onChange func(ctx context.Context), logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Watch starts watching the snapshot for changes. A burst of changes triggers
// one onChange call after the debounce period; onChange runs on the watching
// goroutine, so calls never overlap. It blocks until the context is cancelled
// or an error occurs.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	info, err := os.Stat(w.path)
	if err != nil {
		return err
	}

	var relevant func(name string) bool
	if info.IsDir() {
		// Snapshot directory: the top-level files plus every device file
		if err := fsw.Add(w.path); err != nil {
			return err
		}
		devices := filepath.Join(w.path, loader.DevicesDir)
		if err := fsw.Add(devices); err != nil {
			w.logger.Debug("devices directory not watched yet", zap.String("dir", devices), zap.Error(err))
		}
		relevant = func(name string) bool {
			return loader.IsYAML(name) || name == devices
		}
	} else {
		// Watch the directory containing the file
		// This handles cases where the file is replaced (e.g., by editors)
		if err := fsw.Add(filepath.Dir(w.path)); err != nil {
			return err
		}
		filename := filepath.Base(w.path)
		relevant = func(name string) bool {
			return filepath.Base(name) == filename
		}
	}

	w.logger.Info("watching snapshot for changes", zap.String("path", w.path), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// A devices directory created after startup is watched from now on
			if event.Op&fsnotify.Create != 0 && event.Name == filepath.Join(w.path, loader.DevicesDir) {
				if err := fsw.Add(event.Name); err != nil {
					w.logger.Warn("failed to watch devices directory", zap.String("dir", event.Name), zap.Error(err))
				}
			}

			w.logger.Debug("snapshot file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)

		case <-timer.C:
			w.logger.Info("snapshot changed", zap.String("path", w.path))
			w.onChange(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
