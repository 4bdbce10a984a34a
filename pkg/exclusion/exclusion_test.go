package exclusion_test

import (
	"path/filepath"
	"testing"

	"github.com/localdex/engine/pkg/exclusion"
	"github.com/stretchr/testify/assert"
)

func TestSet_AddContains(t *testing.T) {
	s := exclusion.New()

	dir := filepath.Join(t.TempDir(), "node_modules")
	assert.False(t, s.Contains(dir))

	s.Add(dir)
	assert.True(t, s.Contains(dir))
}

func TestSet_Remove(t *testing.T) {
	s := exclusion.New()

	dir := filepath.Join(t.TempDir(), "cache")
	s.Add(dir)
	s.Remove(dir)

	assert.False(t, s.Contains(dir))
	assert.False(t, s.IsExcluded(dir))
}

func TestSet_IsExcludedViaAncestor(t *testing.T) {
	s := exclusion.New()

	root := t.TempDir()
	excluded := filepath.Join(root, "build")
	nested := filepath.Join(excluded, "obj", "x.o")

	s.Add(excluded)

	assert.True(t, s.IsExcluded(nested))
	assert.True(t, s.IsExcluded(excluded))
	assert.False(t, s.Contains(nested), "Contains should not match via ancestor")
	assert.False(t, s.IsExcluded(root))
}

func TestSet_RemoveDoesNotAffectDescendants(t *testing.T) {
	s := exclusion.New()

	root := t.TempDir()
	parent := filepath.Join(root, "parent")
	child := filepath.Join(parent, "child")

	s.Add(parent)
	s.Add(child)
	s.Remove(parent)

	assert.True(t, s.IsExcluded(child))
	assert.False(t, s.IsExcluded(parent))
}

func TestSet_List(t *testing.T) {
	s := exclusion.New()

	root := t.TempDir()
	b := filepath.Join(root, "b")
	a := filepath.Join(root, "a")

	s.Add(b)
	s.Add(a)

	assert.Equal(t, []string{a, b}, s.List())
}

func TestSet_RelativePathsNormalized(t *testing.T) {
	s := exclusion.New()

	s.Add("./testdata/")

	abs, err := filepath.Abs("testdata")
	assert.NoError(t, err)
	assert.True(t, s.Contains(abs))
}
