// Package store holds the Document Store: the authoritative in-memory map
// of every indexed document, keyed by path, plus the SQLite-backed
// Persistence Layer that survives restarts (spec §3/§4.3).
package store

import (
	"sort"
	"sync"

	"github.com/localdex/engine/pkg/core"
)

// MemStore is the concurrency-safe, in-memory Document Store. It is the
// source of truth for document content and metadata; the Full-Text Index
// holds only what it needs to search and always defers to MemStore for
// everything else, joined by core.StableID (spec §3/§9). The RWMutex
// discipline follows the same pattern as a filesystem-backed document
// store, adapted here from filesystem persistence to an in-memory map.
type MemStore struct {
	mu   sync.RWMutex
	docs map[string]core.Document // keyed by absolute path
}

// New returns an empty Document Store.
func New() *MemStore {
	return &MemStore{docs: make(map[string]core.Document)}
}

// Put inserts or replaces the document at doc.Path, recomputing its ID
// from the path so callers never need to manage IDs themselves.
func (s *MemStore) Put(doc core.Document) core.Document {
	doc.ID = core.StableID(doc.Path)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.Path] = doc

	return doc
}

// Get returns the document at path, if present.
func (s *MemStore) Get(path string) (core.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]

	return doc, ok
}

// GetByID returns the document whose stable id matches id. Linear in the
// number of documents; callers on a hot path should prefer Get by path.
func (s *MemStore) GetByID(id string) (core.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true
		}
	}

	return core.Document{}, false
}

// Remove deletes the document at path. It reports whether a document was
// present.
func (s *MemStore) Remove(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[path]; !ok {
		return false
	}

	delete(s.docs, path)

	return true
}

// RemoveUnderPrefix deletes every document whose path is prefix or begins
// with prefix+separator, used when a root folder or excluded directory is
// removed. It returns the number of documents deleted.
func (s *MemStore) RemoveUnderPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for path := range s.docs {
		if pathUnder(path, prefix) {
			delete(s.docs, path)
			removed++
		}
	}

	return removed
}

// All returns every stored document, sorted by path.
func (s *MemStore) All() []core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

// AllUnderPrefix returns every stored document under prefix, sorted by path.
func (s *MemStore) AllUnderPrefix(prefix string) []core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Document

	for path, doc := range s.docs {
		if pathUnder(path, prefix) {
			out = append(out, doc)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

// Count returns the number of stored documents.
func (s *MemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}

// CountByType recounts documents grouped by DocType. It is always
// recomputed rather than tracked incrementally, so it can never drift
// from the underlying map (spec §3 invariant).
func (s *MemStore) CountByType() (map[core.DocType]int, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[core.DocType]int)

	var totalBytes int64

	for _, doc := range s.docs {
		counts[doc.Type]++
		totalBytes += doc.Size
	}

	return counts, totalBytes
}

// pathUnder reports whether path equals prefix or is nested beneath it.
func pathUnder(path, prefix string) bool {
	if path == prefix {
		return true
	}

	if len(path) <= len(prefix) {
		return false
	}

	return path[:len(prefix)] == prefix && (prefix == "" || path[len(prefix)] == '/' || path[len(prefix)] == '\\')
}
