package walker_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/localdex/engine/pkg/exclusion"
	"github.com/localdex/engine/pkg/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_SupportedAndHiddenAndZeroByte(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a.txt"), "hello world")
	writeFile(t, filepath.Join(root, "b.md"), "hello friends")
	writeFile(t, filepath.Join(root, "empty.txt"), "")
	writeFile(t, filepath.Join(root, ".secret.txt"), "hidden")
	writeFile(t, filepath.Join(root, "~$open.docx"), "lock file")
	writeFile(t, filepath.Join(root, "notes.unknown"), "ignored extension")

	paths, err := walker.Walk(root, exclusion.New())
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}

	assert.ElementsMatch(t, []string{"a.txt", "b.md"}, names)
}

func TestWalk_ExcludedDirectory(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a.txt"), "keep")
	writeFile(t, filepath.Join(root, "drafts", "draft.txt"), "exclude me")

	excl := exclusion.New()
	excl.Add(filepath.Join(root, "drafts"))

	paths, err := walker.Walk(root, excl)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "a.txt", filepath.Base(paths[0]))

	excl.Remove(filepath.Join(root, "drafts"))

	paths, err = walker.Walk(root, excl)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestWalk_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real.txt"), "real content")

	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(filepath.Join(root, "real.txt"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	paths, err := walker.Walk(root, exclusion.New())
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}

	assert.ElementsMatch(t, []string{"real.txt"}, names)
}

func TestWalk_Deduplicated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "sub", "a.txt"), "content")

	paths, err := walker.Walk(root, exclusion.New())
	require.NoError(t, err)
	require.Len(t, paths, 1)

	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}
