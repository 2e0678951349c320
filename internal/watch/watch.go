// Package watch re-runs a scan when source files under a directory change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/clonescan/pkg/config"
	"github.com/panbanda/clonescan/pkg/parser"
)

// DefaultDebounce is how long a path must be quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher collects changes to source files and reports them in batches once
// they settle.
type Watcher struct {
	fs       *fsnotify.Watcher
	config   *config.Config
	root     string
	debounce time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher and registers every non-excluded directory under
// root. Changes made after New returns are observed.
func New(root string, cfg *config.Config, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		fs:       fsw,
		config:   cfg,
		root:     root,
		debounce: debounce,
		logger:   logger,
		now:      time.Now,
		pending:  make(map[string]time.Time),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it that is not excluded.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) excludedDir(name string) bool {
	return slices.Contains(w.config.Exclude.Dirs, name)
}

// Run delivers settled changes to onChange until ctx is done. Calls to
// onChange never overlap, and each receives the changed paths sorted.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	ticker := time.NewTicker(max(w.debounce/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-ticker.C:
			if ready := w.settled(); len(ready) > 0 && onChange != nil {
				onChange(ready)
			}
		}
	}
}

// handleEvent records a change to a source file. New directories are
// watched as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	path := event.Name

	if event.Op&fsnotify.Create != 0 && !w.excludedDir(filepath.Base(path)) {
		// Adding a plain file fails harmlessly; only directories matter here.
		if err := w.addTree(path); err != nil {
			w.logger.Debug("could not watch new directory", "path", path, "error", err)
		}
	}

	if w.config.ShouldExclude(path) || parser.DetectLanguage(path) == parser.LangUnknown {
		return
	}

	w.mu.Lock()
	w.pending[path] = w.now()
	w.mu.Unlock()
}

// settled removes and returns the paths that have not changed for the
// debounce period.
func (w *Watcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(ready)
	return ready
}

// Watched returns the directories being watched.
func (w *Watcher) Watched() []string {
	return w.fs.WatchList()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
