// Package watcher observes the content directory with fsnotify and
// emits debounced change signals so that bulk copies trigger a single
// rescan instead of one per file.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"signage/internal/catalog"
	"signage/pkg/logging"
)

// Watcher watches a single directory for media file changes. Events on
// files with unsupported extensions are ignored. Rapid successive
// events collapse into one signal after the debounce interval passes
// without further activity.
type Watcher struct {
	mu sync.Mutex

	dir      string
	formats  catalog.Formats
	debounce time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	running bool
}

// New creates a watcher for the given directory. A zero debounce
// interval defaults to two seconds.
func New(dir string, formats catalog.Formats, debounce time.Duration) *Watcher {
	if debounce == 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		dir:      dir,
		formats:  formats,
		debounce: debounce,
		stopCh:   make(chan struct{}),
	}
}

// Start begins watching and delivers debounced change signals on the
// changes channel until the context is cancelled or Stop is called. The
// watched directory is created if it does not exist.
func (w *Watcher) Start(ctx context.Context, changes chan<- struct{}) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.mu.Unlock()
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go w.processEvents(ctx, changes)

	logging.Info("Watcher", "Watching %s for content changes", w.dir)
	return nil
}

// SetDir switches the watched directory, used when a schedule change
// selects a different content folder. The pending debounce timer is
// discarded because the caller rescans immediately after switching.
func (w *Watcher) SetDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir == w.dir {
		return nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if !w.running {
		w.dir = dir
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	if err := w.watcher.Remove(w.dir); err != nil {
		logging.Warn("Watcher", "Could not remove watch on %s: %v", w.dir, err)
	}
	w.dir = dir
	logging.Info("Watcher", "Now watching %s", dir)
	return nil
}

// Stop ends watching and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) processEvents(ctx context.Context, changes chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, changes)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "Filesystem watcher error")
		}
	}
}

// handleEvent filters an fsnotify event and arms the debounce timer.
func (w *Watcher) handleEvent(event fsnotify.Event, changes chan<- struct{}) {
	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	if event.Op&relevant == 0 {
		return
	}

	if w.formats.Classify(filepath.Base(event.Name)) == catalog.KindUnknown {
		return
	}

	logging.Debug("Watcher", "File event: %s %s", event.Op, filepath.Base(event.Name))

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case changes <- struct{}{}:
		default:
			logging.Warn("Watcher", "Change channel full, dropping signal")
		}
	})
}
