package search_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *search.Index {
	t.Helper()

	idx, err := search.Open(filepath.Join(t.TempDir(), "index.bleve"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = idx.Close() })

	return idx
}

func TestIndex_PutAndSearch(t *testing.T) {
	idx := openTestIndex(t)

	doc := core.Document{
		ID:         core.StableID("/docs/budget.txt"),
		Path:       "/docs/budget.txt",
		Name:       "budget.txt",
		Type:       core.DocTypeText,
		Size:       100,
		ModifiedAt: time.Now(),
		Content:    "quarterly budget projections for the engineering team",
	}

	require.NoError(t, idx.Put(doc))

	hits, total, err := idx.Search("budget", core.SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, hits, 1)
	assert.Equal(t, doc.ID, hits[0].ID)
}

func TestIndex_RemoveDropsFromResults(t *testing.T) {
	idx := openTestIndex(t)

	doc := core.Document{
		ID:         core.StableID("/docs/notes.txt"),
		Path:       "/docs/notes.txt",
		Name:       "notes.txt",
		Type:       core.DocTypeText,
		ModifiedAt: time.Now(),
		Content:    "project retrospective notes",
	}

	require.NoError(t, idx.Put(doc))
	require.NoError(t, idx.Remove(doc.ID))

	_, total, err := idx.Search("retrospective", core.SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestIndex_BooleanOperators(t *testing.T) {
	idx := openTestIndex(t)

	docs := []core.Document{
		{Path: "/a.txt", Name: "a.txt", Type: core.DocTypeText, ModifiedAt: time.Now(), Content: "apples and oranges"},
		{Path: "/b.txt", Name: "b.txt", Type: core.DocTypeText, ModifiedAt: time.Now(), Content: "apples without citrus"},
	}

	for _, d := range docs {
		d.ID = core.StableID(d.Path)
		require.NoError(t, idx.Put(d))
	}

	hits, total, err := idx.Search("apples -oranges", core.SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, hits, 1)
	assert.Equal(t, core.StableID("/b.txt"), hits[0].ID)
}

func TestIndex_DocCount(t *testing.T) {
	idx := openTestIndex(t)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	require.NoError(t, idx.Put(core.Document{ID: "x", Path: "/x.txt", Name: "x.txt", Type: core.DocTypeText, ModifiedAt: time.Now()}))

	count, err = idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
