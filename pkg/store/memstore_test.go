package store_test

import (
	"testing"
	"time"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_PutAssignsStableID(t *testing.T) {
	s := store.New()

	doc := s.Put(core.Document{Path: "/docs/a.txt", Name: "a.txt", Size: 10, Type: core.DocTypeText})
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, core.StableID("/docs/a.txt"), doc.ID)

	again := s.Put(core.Document{Path: "/docs/a.txt", Name: "a.txt", Size: 20, Type: core.DocTypeText})
	assert.Equal(t, doc.ID, again.ID)

	got, ok := s.Get("/docs/a.txt")
	require.True(t, ok)
	assert.Equal(t, int64(20), got.Size)
}

func TestMemStore_RemoveUnderPrefix(t *testing.T) {
	s := store.New()
	s.Put(core.Document{Path: "/docs/folder/a.txt", Type: core.DocTypeText})
	s.Put(core.Document{Path: "/docs/folder/sub/b.txt", Type: core.DocTypeText})
	s.Put(core.Document{Path: "/docs/other/c.txt", Type: core.DocTypeText})

	removed := s.RemoveUnderPrefix("/docs/folder")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Count())

	_, ok := s.Get("/docs/other/c.txt")
	assert.True(t, ok)
}

func TestMemStore_CountByType(t *testing.T) {
	s := store.New()
	s.Put(core.Document{Path: "/a.txt", Type: core.DocTypeText, Size: 5})
	s.Put(core.Document{Path: "/b.pdf", Type: core.DocTypePDF, Size: 7})
	s.Put(core.Document{Path: "/c.txt", Type: core.DocTypeText, Size: 3})

	counts, total := s.CountByType()
	assert.Equal(t, 2, counts[core.DocTypeText])
	assert.Equal(t, 1, counts[core.DocTypePDF])
	assert.Equal(t, int64(15), total)
}

func TestMemStore_GetByID(t *testing.T) {
	s := store.New()
	doc := s.Put(core.Document{Path: "/x.txt", Type: core.DocTypeText, ModifiedAt: time.Now()})

	found, ok := s.GetByID(doc.ID)
	require.True(t, ok)
	assert.Equal(t, "/x.txt", found.Path)

	_, ok = s.GetByID("does-not-exist")
	assert.False(t, ok)
}
