package engine

import (
	"fmt"

	"github.com/localdex/engine/pkg/core"
)

// SaveIndex persists the current root and exclusion configuration. Document
// writes are already durable as they happen (spec §4.3), so this mainly
// gives the UI an explicit "save point" command (spec §6: save_index).
func (e *Engine) SaveIndex() error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	e.mu.RLock()
	roots := make([]core.RootFolder, 0, len(e.roots))
	for _, r := range e.roots {
		roots = append(roots, r)
	}
	e.mu.RUnlock()

	for _, r := range roots {
		if err := e.persist.SaveRoot(r); err != nil {
			return fmt.Errorf("save root %s: %w", r.Path, err)
		}
	}

	for _, p := range e.excl.List() {
		if err := e.persist.SaveExclusion(p); err != nil {
			return fmt.Errorf("save exclusion %s: %w", p, err)
		}
	}

	return nil
}

// LoadIndex discards the in-memory Document Store, Full-Text Index
// contents, roots, and exclusions, and reloads them from persistence
// (spec §6: load_index).
func (e *Engine) LoadIndex() (LoadResult, error) {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	if err := e.wipeInMemoryState(); err != nil {
		return LoadResult{}, fmt.Errorf("wipe in-memory state: %w", err)
	}

	if err := e.reconcileFromDisk(); err != nil {
		return LoadResult{}, fmt.Errorf("%w: %v", core.ErrCorruptState, err)
	}

	e.mu.RLock()
	rootCount := len(e.roots)
	e.mu.RUnlock()

	return LoadResult{Documents: e.store.Count(), Roots: rootCount}, nil
}

// ClearIndex wipes every document, root, and exclusion from both the
// in-memory state and persistence, returning the engine to Idle (spec §6:
// clear_index, §4.5 ClearingIndex state).
func (e *Engine) ClearIndex() error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	e.setState(StateClearingIndex)
	defer e.setState(StateIdle)

	rootPaths := e.persistedRootPaths()
	exclusionPaths := e.persistedExclusionPaths()

	if err := e.wipeInMemoryState(); err != nil {
		return err
	}

	if err := e.persist.DeleteDocumentsUnderPrefix(""); err != nil {
		return fmt.Errorf("clear persisted documents: %w", err)
	}

	for _, p := range rootPaths {
		if err := e.persist.DeleteRoot(p); err != nil {
			return fmt.Errorf("clear root %s: %w", p, err)
		}
	}

	for _, p := range exclusionPaths {
		if err := e.persist.DeleteExclusion(p); err != nil {
			return fmt.Errorf("clear exclusion %s: %w", p, err)
		}
	}

	return nil
}

// wipeInMemoryState stops watching, drops the background queue, and
// removes every document, root, and exclusion currently held in memory
// (but not yet from persistence), the common first step of load_index
// (replace with a fresh load) and clear_index (replace with nothing).
func (e *Engine) wipeInMemoryState() error {
	e.watchCancelIfRunning()
	e.watch.Stop() //nolint:errcheck
	e.queue.Reset(nil)

	for _, doc := range e.store.All() {
		if err := e.index.Remove(doc.ID); err != nil {
			return fmt.Errorf("remove index entry %s: %w", doc.Path, err)
		}
	}

	e.store.RemoveUnderPrefix("")

	e.mu.Lock()
	e.roots = make(map[string]core.RootFolder)
	e.mu.Unlock()

	for _, p := range e.excl.List() {
		e.excl.Remove(p)
	}

	return nil
}

func (e *Engine) persistedRootPaths() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0, len(e.roots))
	for p := range e.roots {
		out = append(out, p)
	}

	return out
}

func (e *Engine) persistedExclusionPaths() []string {
	return e.excl.List()
}
