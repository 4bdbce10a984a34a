// Package watcher implements the Change Watcher: an fsnotify-backed
// subscription across every currently indexed root, debounced and
// filtered down to the create/modify/delete/rename events the Scan/Index
// Coordinator cares about (spec §4.5), generalized from a single base
// path to a dynamic set of roots that can be added or removed without
// tearing down the whole watcher.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/localdex/engine/pkg/core"
)

// defaultDebounce coalesces the burst of events editors typically fire
// for a single logical save (temp file write + rename + chmod).
const defaultDebounce = 500 * time.Millisecond

// excluder reports whether a directory is effectively excluded.
type excluder interface {
	IsExcluded(path string) bool
}

// Watcher watches a dynamic set of root directories for changes to
// supported file types and emits core.Event values of type
// core.EventFileChanged. Errors and queue overflow are not sent on that
// channel: they raise a signal on the separate channel returned by
// RescanRequested, which means "schedule a full re-scan of all roots".
type Watcher struct {
	fsw    *fsnotify.Watcher
	excl   excluder
	events chan core.Event
	rescan chan struct{}

	mu      sync.Mutex
	roots   map[string]bool
	running bool
	cancel  context.CancelFunc
}

// New creates a Watcher filtering against excl. Call AddRoot for every
// folder that should be watched, then Start.
func New(excl excluder) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsw:    fsw,
		excl:   excl,
		events: make(chan core.Event, 256),
		rescan: make(chan struct{}, 1),
		roots:  make(map[string]bool),
	}, nil
}

// Events returns the channel of file-change events. Closed by Stop.
func (w *Watcher) Events() <-chan core.Event {
	return w.events
}

// RescanRequested fires when the watcher hit an unrecoverable error (or
// overflow) and the coordinator should fall back to a full re-scan rather
// than trust incremental events.
func (w *Watcher) RescanRequested() <-chan struct{} {
	return w.rescan
}

// AddRoot begins watching root and every subdirectory not excluded. Safe
// to call while running.
func (w *Watcher) AddRoot(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.roots[abs] = true
	w.mu.Unlock()

	return w.watchTree(abs)
}

// RemoveRoot stops watching root and its subdirectories. Subdirectories
// belonging to other still-active roots are left alone.
func (w *Watcher) RemoveRoot(root string) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return
	}

	w.mu.Lock()
	delete(w.roots, abs)
	w.mu.Unlock()

	_ = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort unwatch; a failed stat shouldn't abort cleanup
		}

		if d.IsDir() {
			_ = w.fsw.Remove(path)
		}

		return nil
	})
}

// watchTree adds root and every non-excluded subdirectory to the
// underlying fsnotify watcher.
func (w *Watcher) watchTree(root string) error {
	if err := w.fsw.Add(root); err != nil {
		return err
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable subtrees rather than aborting setup
		}

		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || w.excl.IsExcluded(path)) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			slog.Warn("watcher: failed to watch directory", "path", path, "error", err)
		}

		return nil
	})
}

// Start begins the event-processing goroutine. ctx cancellation stops the
// watcher; callers may also call Stop directly. Safe to call again after a
// prior Stop: a fresh Events channel is installed for the new run.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.events = make(chan core.Event, 256)
	w.mu.Unlock()

	go w.loop(ctx)
}

// Stop halts the event-processing goroutine and closes the current Events
// channel, but leaves the underlying fsnotify watches in place so a later
// Start can resume without re-adding every root. Safe to call more than
// once. Use Close to release the OS watch handles entirely.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}

	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	return nil
}

// Close stops the watcher if running and releases the underlying fsnotify
// handle. The Watcher must not be used again afterward.
func (w *Watcher) Close() error {
	_ = w.Stop()

	return w.fsw.Close()
}

// IsRunning reports whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.running
}

func (w *Watcher) loop(ctx context.Context) {
	pending := make(map[string]fsnotify.Event)

	var pendingMu sync.Mutex

	var debounceTimer *time.Timer

	flush := func() {
		pendingMu.Lock()
		batch := pending
		pending = make(map[string]fsnotify.Event)
		pendingMu.Unlock()

		for _, ev := range batch {
			w.handle(ev)
		}
	}

	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			flush()

			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if ev.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			pendingMu.Lock()
			pending[ev.Name] = ev
			pendingMu.Unlock()

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(defaultDebounce, flush)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			slog.Error("watcher: fsnotify error, requesting full re-scan", "error", err)
			w.requestRescan()
		}
	}
}

func (w *Watcher) requestRescan() {
	select {
	case w.rescan <- struct{}{}:
	default:
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name

	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ev.Op&fsnotify.Create == fsnotify.Create:
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.excl.IsExcluded(path) {
				if err := w.watchTree(path); err != nil {
					slog.Warn("watcher: failed to watch new directory", "path", path, "error", err)
				}
			}

			return
		}

		if !core.SupportedExtensions[ext] || w.excl.IsExcluded(filepath.Dir(path)) {
			return
		}

		w.emit(core.Event{Type: core.EventFileChanged, ChangeType: core.FileChangeAdded, Path: path})

	case ev.Op&fsnotify.Write == fsnotify.Write:
		if !core.SupportedExtensions[ext] || w.excl.IsExcluded(filepath.Dir(path)) {
			return
		}

		w.emit(core.Event{Type: core.EventFileChanged, ChangeType: core.FileChangeModified, Path: path})

	case ev.Op&fsnotify.Remove == fsnotify.Remove, ev.Op&fsnotify.Rename == fsnotify.Rename:
		if !core.SupportedExtensions[ext] {
			return
		}

		w.emit(core.Event{Type: core.EventFileChanged, ChangeType: core.FileChangeRemoved, Path: path})
	}
}

func (w *Watcher) emit(ev core.Event) {
	select {
	case w.events <- ev:
	default:
		slog.Warn("watcher: event channel full, dropping event", "path", ev.Path)
	}
}
