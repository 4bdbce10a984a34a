// Package walker enumerates candidate files under a root directory,
// honoring the exclusion set and the supported-extension list (spec §4.1).
package walker

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/exclusion"
)

// excluder reports whether a directory is effectively excluded. Satisfied
// by *exclusion.Set.
type excluder interface {
	IsExcluded(path string) bool
}

// Walk produces an ordered, deduplicated list of absolute file paths under
// root whose lowercase extension is supported, skipping hidden files,
// office lock files, zero-byte files, symlinks, and excluded directories.
// A filesystem error on a subtree is logged and that subtree is skipped;
// the walk continues.
func Walk(root string, excl excluder) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("walker: skipping subtree after error", "path", path, "error", err)

			if d != nil && d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path != absRoot && (strings.HasPrefix(name, ".") || excl.IsExcluded(path)) {
				return fs.SkipDir
			}

			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !core.SupportedExtensions[ext] {
			return nil
		}

		if excl.IsExcluded(filepath.Dir(path)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("walker: skipping unreadable file", "path", path, "error", err)
			return nil
		}

		if info.Size() == 0 {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(paths)

	return dedupe(paths), nil
}

func dedupe(paths []string) []string {
	out := paths[:0]

	var prev string

	for i, p := range paths {
		if i > 0 && p == prev {
			continue
		}

		out = append(out, p)
		prev = p
	}

	return out
}
