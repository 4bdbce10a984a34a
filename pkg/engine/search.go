package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/search"
)

// SearchIndex runs query against the Full-Text Index, joins hits back
// against the Document Store for metadata and snippets, applies post-match
// filters, and records the query in search history (spec §6: search_index).
func (e *Engine) SearchIndex(query string, opts core.SearchOpts) (core.SearchResults, error) {
	hits, _, err := e.index.Search(query, opts)
	if err != nil {
		return core.SearchResults{}, fmt.Errorf("search: %w", err)
	}

	results := make([]core.SearchResult, 0, len(hits))

	for _, h := range hits {
		doc, ok := e.store.GetByID(h.ID)
		if !ok {
			continue
		}

		if !matchesFilters(doc, opts.Filters) {
			continue
		}

		results = append(results, core.SearchResult{
			Path:     doc.Path,
			Name:     doc.Name,
			Type:     doc.Type,
			Size:     doc.Size,
			Modified: doc.ModifiedAt,
			Score:    h.Score,
			Snippets: search.Snippets(doc.Content, queryTerms(query), search.DefaultSnippetWindow),
		})
	}

	if err := e.persist.AppendSearchHistory(core.SearchHistoryEntry{
		Query: query, Timestamp: time.Now(), ResultCount: len(results),
	}); err != nil {
		return core.SearchResults{}, fmt.Errorf("record search history: %w", err)
	}

	return core.SearchResults{Hits: results, Total: len(results)}, nil
}

// queryTerms pulls the bare words out of a query string for snippet
// generation, stripping quotes and boolean operators so the snippet
// highlighter sees the same words the index matched on.
func queryTerms(query string) []string {
	replacer := strings.NewReplacer(`"`, " ", "+", " ", "-", " ")

	fields := strings.Fields(replacer.Replace(query))

	terms := make([]string, 0, len(fields))

	for _, f := range fields {
		if strings.EqualFold(f, "AND") || strings.EqualFold(f, "OR") || strings.EqualFold(f, "NOT") {
			continue
		}

		terms = append(terms, f)
	}

	return terms
}

func matchesFilters(doc core.Document, f core.SearchFilters) bool {
	if len(f.Types) > 0 {
		found := false

		for _, t := range f.Types {
			if doc.Type == t {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	if !f.ModifiedFrom.IsZero() && doc.ModifiedAt.Before(f.ModifiedFrom) {
		return false
	}

	if !f.ModifiedTo.IsZero() && doc.ModifiedAt.After(f.ModifiedTo) {
		return false
	}

	if f.MinSize > 0 && doc.Size < f.MinSize {
		return false
	}

	if f.MaxSize > 0 && doc.Size > f.MaxSize {
		return false
	}

	if f.PathPrefix != "" && !strings.HasPrefix(doc.Path, f.PathPrefix) {
		return false
	}

	return true
}

// ExtractFileContent returns the full content (and structured tree, when
// available) of an already-indexed file, for the preview pane (spec §6:
// extract_file_content).
func (e *Engine) ExtractFileContent(path string) (core.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("resolve path %s: %w", path, err)
	}

	doc, ok := e.store.Get(abs)
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, abs)
	}

	return doc, nil
}

// GetAllFiles returns every indexed document as a listing (spec §6:
// get_all_files).
func (e *Engine) GetAllFiles() []FileSummary {
	docs := e.store.All()

	out := make([]FileSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fileSummaryFor(doc))
	}

	return out
}

// GetIndexStats recomputes index statistics fresh from the Document Store,
// never from a cached counter, so they can never drift (spec §3 invariant,
// §6: get_index_stats).
func (e *Engine) GetIndexStats() core.IndexStats {
	byType, totalBytes := e.store.CountByType()

	e.mu.RLock()
	folders := len(e.roots)
	e.mu.RUnlock()

	return core.IndexStats{
		CountByType:  byType,
		TotalBytes:   totalBytes,
		FolderCount:  folders,
		PendingQueue: e.queue.Status().Pending,
	}
}

// GetFolderTree builds the directory tree of every folder that currently
// holds at least one indexed document under an active root, annotated with
// exclusion state and per-folder file counts (spec §6: get_folder_tree).
func (e *Engine) GetFolderTree() []*FolderTreeNode {
	e.mu.RLock()
	roots := make([]string, 0, len(e.roots))
	for p := range e.roots {
		roots = append(roots, p)
	}
	e.mu.RUnlock()

	sort.Strings(roots)

	out := make([]*FolderTreeNode, 0, len(roots))

	for _, root := range roots {
		out = append(out, e.buildFolderNode(root))
	}

	return out
}

func (e *Engine) buildFolderNode(dir string) *FolderTreeNode {
	docs := e.store.AllUnderPrefix(dir)

	node := &FolderTreeNode{
		Path:       dir,
		Name:       filepath.Base(dir),
		IsExcluded: e.excl.IsExcluded(dir),
		FileCount:  len(docs),
	}

	children := make(map[string]bool)

	for _, doc := range docs {
		rel, err := filepath.Rel(dir, doc.Path)
		if err != nil {
			continue
		}

		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) > 1 {
			children[parts[0]] = true
		}
	}

	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		node.Children = append(node.Children, e.buildFolderNode(filepath.Join(dir, name)))
	}

	return node
}
