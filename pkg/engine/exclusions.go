package engine

import (
	"fmt"
	"path/filepath"

	"github.com/localdex/engine/pkg/core"
)

// ToggleFolderExclusion flips the exclusion state of dir and returns the
// new state (spec §6: toggle_folder_exclusion).
func (e *Engine) ToggleFolderExclusion(dir string) (bool, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false, fmt.Errorf("resolve path %s: %w", dir, err)
	}

	if e.excl.Contains(abs) {
		if err := e.RemoveExcludedFolder(abs); err != nil {
			return false, err
		}

		return false, nil
	}

	if err := e.AddExcludedFolder(abs); err != nil {
		return false, err
	}

	return true, nil
}

// ExcludeFoldersBatch excludes every directory in dirs (spec §6:
// exclude_folders_batch).
func (e *Engine) ExcludeFoldersBatch(dirs []string) error {
	for _, d := range dirs {
		if err := e.AddExcludedFolder(d); err != nil {
			return err
		}
	}

	return nil
}

// IncludeFoldersBatch removes the exclusion on every directory in dirs
// (spec §6: include_folders_batch).
func (e *Engine) IncludeFoldersBatch(dirs []string) error {
	for _, d := range dirs {
		if err := e.RemoveExcludedFolder(d); err != nil {
			return err
		}
	}

	return nil
}

// GetExcludedFolders returns every excluded directory (spec §6:
// get_excluded_folders).
func (e *Engine) GetExcludedFolders() []string {
	return e.excl.List()
}

// AddExcludedFolder excludes dir: documents already indexed under it are
// removed from the Store and Index (kept on disk, and re-indexed when the
// exclusion is removed) (spec §6: add_excluded_folder).
func (e *Engine) AddExcludedFolder(dir string) error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", dir, err)
	}

	e.excl.Add(abs)

	if err := e.persist.SaveExclusion(abs); err != nil {
		return err
	}

	return e.removeDocumentsUnderPrefix(abs)
}

// RemoveExcludedFolder stops excluding dir and re-scans every root that
// contains dir or lies beneath it, so the documents the exclusion hid are
// indexed again (spec §6: remove_excluded_folder).
func (e *Engine) RemoveExcludedFolder(dir string) error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", dir, err)
	}

	e.excl.Remove(abs)

	e.mu.RLock()
	var affected []string
	for p := range e.roots {
		if p == abs || isAncestor(p, abs) || isAncestor(abs, p) {
			affected = append(affected, p)
		}
	}
	e.mu.RUnlock()

	for _, root := range affected {
		if _, err := e.runScan(root); err != nil {
			return err
		}
	}

	return e.persist.DeleteExclusion(abs)
}

// rootContaining returns the root that owns path, if any.
func (e *Engine) rootContaining(path string) (core.RootFolder, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for p, r := range e.roots {
		if p == path || isAncestor(p, path) {
			return r, true
		}
	}

	return core.RootFolder{}, false
}
