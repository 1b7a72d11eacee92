// Package watcher reports writes to individual input files using fsnotify.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a fixed set of files. Parent directories are watched
// instead of the files themselves so that editors which save by
// rename-and-replace are still seen.
type FileWatcher struct {
	interval time.Duration
	logger   *slog.Logger
}

// New creates a FileWatcher that waits interval after the last event on a
// file before reporting it.
func New(interval time.Duration, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		interval: interval,
		logger:   logger.With("component", "watcher"),
	}
}

// Watch blocks until ctx is done, calling onChange once per burst of
// writes to any of paths. onChange receives the path as given.
func (fw *FileWatcher) Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", "path", dir)
	}

	debouncers := make(map[string]*Debouncer, len(targets))
	for abs := range targets {
		debouncers[abs] = NewDebouncer(fw.interval)
	}
	defer func() {
		for _, d := range debouncers {
			d.Stop()
		}
	}()

	fw.logger.Info("file watcher started", "files", len(targets), "debounce_ms", fw.interval.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !relevant(event) {
				continue
			}
			abs := filepath.Clean(event.Name)
			original, ok := targets[abs]
			if !ok {
				continue
			}

			fw.logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())
			debouncers[abs].Trigger(func() { onChange(original) })

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// relevant drops events that cannot change file content.
func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Debouncer collects rapid events and runs the latest callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger (re)starts the quiet period with callback as the pending action.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later Trigger calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
