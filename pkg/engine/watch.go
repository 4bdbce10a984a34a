package engine

import (
	"context"
	"log/slog"

	"github.com/localdex/engine/pkg/core"
)

// StartWatching begins watching every currently indexed root and starts
// the goroutine that turns filesystem events into incremental re-indexing
// (spec §6: start_watching).
func (e *Engine) StartWatching() error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	if e.watch.IsRunning() {
		return ErrAlreadyWatching
	}

	e.mu.RLock()
	roots := make([]string, 0, len(e.roots))
	for p := range e.roots {
		roots = append(roots, p)
	}
	e.mu.RUnlock()

	for _, root := range roots {
		if err := e.watch.AddRoot(root); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.watchCtx = ctx
	e.watchCancel = cancel
	e.mu.Unlock()

	e.watch.Start(ctx)

	go e.consumeWatchEvents(ctx)

	e.setState(StateWatching)

	return nil
}

// StopWatching halts the watcher (spec §6: stop_watching).
func (e *Engine) StopWatching() error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	if !e.watch.IsRunning() {
		return ErrNotWatching
	}

	e.watchCancelIfRunning()

	if err := e.watch.Stop(); err != nil {
		return err
	}

	e.setState(StateIdle)

	return nil
}

// consumeWatchEvents turns watcher file-change events into incremental
// re-indexing, and a rescan request into a full re-scan of every root
// (spec §4.6's "the Coordinator schedules a full re-scan"). It exits when
// ctx is cancelled or the watcher's channels close.
func (e *Engine) consumeWatchEvents(ctx context.Context) {
	events := e.watch.Events()
	rescan := e.watch.RescanRequested()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}

			e.handleWatchEvent(ev)

		case _, ok := <-rescan:
			if !ok {
				return
			}

			e.rescanAllRoots()
		}
	}
}

func (e *Engine) handleWatchEvent(ev core.Event) {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	switch ev.ChangeType {
	case core.FileChangeAdded, core.FileChangeModified:
		if _, err := e.indexOneFile(ev.Path); err != nil {
			slog.Warn("engine: failed to index changed file", "path", ev.Path, "error", err)
		}

	case core.FileChangeRemoved:
		if doc, ok := e.store.Get(ev.Path); ok {
			e.store.Remove(ev.Path)

			if err := e.index.Remove(doc.ID); err != nil {
				slog.Warn("engine: failed to remove deleted file from index", "path", ev.Path, "error", err)
			}

			if err := e.persist.DeleteDocument(ev.Path); err != nil {
				slog.Warn("engine: failed to drop deleted file from persistence", "path", ev.Path, "error", err)
			}
		}
	}

	e.bus.Publish(ev)
}

// rescanAllRoots re-walks every current root, used when the watcher itself
// reports an error such as overflow (spec §4.6).
func (e *Engine) rescanAllRoots() {
	e.mu.RLock()
	roots := make([]string, 0, len(e.roots))
	for p := range e.roots {
		roots = append(roots, p)
	}
	e.mu.RUnlock()

	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	for _, root := range roots {
		if _, err := e.runScan(root); err != nil {
			slog.Warn("engine: re-scan after watcher error failed", "root", root, "error", err)
		}
	}
}
