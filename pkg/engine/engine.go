// Package engine implements the Scan/Index Coordinator: the single state
// object that owns the Document Store, the Full-Text Index, the Change
// Watcher, and the background PDF queue, and exposes the full command
// surface of spec §6 as methods (spec §4.5, §9 "the engine owns exactly
// one state object"). Generalized from a Service type's thin, wrapped,
// error-annotated methods delegating to narrow interfaces, extended with
// the phased scan/index pipeline and progress events this domain needs.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/exclusion"
	"github.com/localdex/engine/pkg/extract"
	"github.com/localdex/engine/pkg/search"
	"github.com/localdex/engine/pkg/store"
	"github.com/localdex/engine/pkg/walker"
	"github.com/localdex/engine/pkg/watcher"
)

// FolderSummary is the {path, file_count} shape returned for root folders
// (spec §6: add_folders, get_indexed_folders).
type FolderSummary struct {
	Path      string
	FileCount int
}

// FileSummary is the listing shape returned for get_all_files and
// scan_folder, a Document without its content (spec §6).
type FileSummary struct {
	Path       string
	Name       string
	Type       core.DocType
	Size       int64
	ModifiedAt time.Time
	HasWarning bool
}

// FolderTreeNode is one node of the get_folder_tree response (spec §6).
type FolderTreeNode struct {
	Path       string
	Name       string
	IsExcluded bool
	FileCount  int
	Children   []*FolderTreeNode
}

// LoadResult is the response shape of load_index (spec §6).
type LoadResult struct {
	Documents int
	Roots     int
}

// Engine is the engine's single owned state object (spec §9): Document
// Store, Full-Text Index, Change Watcher, and background PDF queue, plus
// the root/exclusion configuration that governs them.
type Engine struct {
	dataDir string

	store   *store.MemStore
	persist *store.Persistence
	index   *search.Index
	extract *extract.Registry
	watch   *watcher.Watcher
	excl    *exclusion.Set
	bus     *EventBus
	queue   *pdfQueue

	// mailbox serializes every command that mutates state, matching the
	// single-writer discipline of spec §5: the indexing worker, the
	// watcher's re-index path, and foreground commands all funnel through
	// this lock rather than racing each other.
	mailbox sync.Mutex

	mu    sync.RWMutex // guards state and roots below
	state State
	roots map[string]core.RootFolder

	watchCtx    context.Context
	watchCancel context.CancelFunc

	pdfMu           sync.Mutex
	pdfIndexed      int
	pdfSkipped      int
	pdfSkippedFiles []core.SkippedFile
}

// New opens (creating if necessary) the engine's on-disk state under
// dataDir: store.db for documents/roots/exclusions/history, and index/
// for the full-text index. It then verifies the store/index invariants
// and self-repairs minor drift before returning (spec §4.7).
func New(dataDir string) (*Engine, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
	}

	persist, err := store.Open(filepath.Join(dataDir, "store.db"))
	if err != nil {
		return nil, fmt.Errorf("open persistence: %w", err)
	}

	idx, err := search.Open(filepath.Join(dataDir, "index"))
	if err != nil {
		persist.Close() //nolint:errcheck

		return nil, fmt.Errorf("open full-text index: %w", err)
	}

	excl := exclusion.New()

	w, err := watcher.New(excl)
	if err != nil {
		idx.Close()      //nolint:errcheck
		persist.Close() //nolint:errcheck

		return nil, fmt.Errorf("create change watcher: %w", err)
	}

	e := &Engine{
		dataDir: dataDir,
		store:   store.New(),
		persist: persist,
		index:   idx,
		extract: extract.NewRegistry(),
		watch:   w,
		excl:    excl,
		bus:     NewEventBus(),
		state:   StateIdle,
		roots:   make(map[string]core.RootFolder),
	}
	e.queue = newPDFQueue(e.processBackgroundPDF)

	if err := e.checkSchemaVersion(); err != nil {
		idx.Close()      //nolint:errcheck
		persist.Close() //nolint:errcheck

		return nil, err
	}

	if err := e.reconcileFromDisk(); err != nil {
		idx.Close()      //nolint:errcheck
		persist.Close() //nolint:errcheck

		return nil, fmt.Errorf("%w: %v", core.ErrCorruptState, err)
	}

	return e, nil
}

// Events returns the engine's event stream. See EventBus.Subscribe.
func (e *Engine) Events() (<-chan core.Event, func()) {
	return e.bus.Subscribe()
}

// Close stops the watcher, drains the background queue, and releases the
// index and persistence handles. Safe to call once.
func (e *Engine) Close() error {
	e.watchCancelIfRunning()
	e.watch.Close() //nolint:errcheck
	e.queue.Shutdown()
	e.bus.Close()

	if err := e.index.Close(); err != nil {
		return err
	}

	return e.persist.Close()
}

// reconcileFromDisk loads roots, exclusions, and documents persisted from a
// previous run into the in-memory store, dropping entries whose file no
// longer exists (self-repair, spec §4.7).
func (e *Engine) reconcileFromDisk() error {
	roots, err := e.persist.LoadRoots()
	if err != nil {
		return fmt.Errorf("load roots: %w", err)
	}

	for _, r := range roots {
		e.roots[r.Path] = r
	}

	excluded, err := e.persist.LoadExclusions()
	if err != nil {
		return fmt.Errorf("load exclusions: %w", err)
	}

	for _, p := range excluded {
		e.excl.Add(p)
	}

	docs, err := e.persist.LoadDocuments()
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}

	for _, doc := range docs {
		if _, statErr := os.Stat(doc.Path); statErr != nil {
			slog.Info("engine: dropping persisted document for missing file", "path", doc.Path)

			if delErr := e.persist.DeleteDocument(doc.Path); delErr != nil {
				slog.Warn("engine: failed to drop stale document record", "path", doc.Path, "error", delErr)
			}

			continue
		}

		if e.excl.IsExcluded(filepath.Dir(doc.Path)) {
			continue
		}

		e.store.Put(doc)

		if indexErr := e.index.Put(doc); indexErr != nil {
			slog.Warn("engine: failed to re-index persisted document", "path", doc.Path, "error", indexErr)
		}
	}

	persistedCount, err := e.persist.DocumentCount()
	if err != nil {
		return fmt.Errorf("count persisted documents: %w", err)
	}

	if loaded := e.store.Count(); loaded != persistedCount {
		slog.Warn("engine: in-memory document count drifted from store.db after reconcile",
			"loaded", loaded, "persisted", persistedCount)
	}

	return nil
}

// schemaVersion identifies the shape of the data this build of the engine
// writes to store.db and the bleve index. Bumped whenever a change would
// make an older build misread a newer on-disk state, or vice versa.
const schemaVersion = "1"

// checkSchemaVersion compares the schema_version recorded in store.db's meta
// table against this build's schemaVersion. A missing value means a fresh or
// pre-meta-table database, so the current version is simply recorded. A
// mismatch is reported as corrupt state rather than silently reinterpreted,
// since nothing in this build knows how to migrate an older or newer layout.
func (e *Engine) checkSchemaVersion() error {
	existing, found, err := e.persist.LoadMeta("schema_version")
	if err != nil {
		return fmt.Errorf("load schema version: %w", err)
	}

	if found && existing != schemaVersion {
		return fmt.Errorf("%w: store.db schema version %q does not match engine version %q",
			core.ErrCorruptState, existing, schemaVersion)
	}

	if err := e.persist.SaveMeta("schema_version", schemaVersion); err != nil {
		return fmt.Errorf("save schema version: %w", err)
	}

	return nil
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// State reports the engine's current state-machine state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.state
}

// AddFolders adds each path as a root folder, ignoring any already covered
// by an existing root and subsuming (replacing) any existing root that the
// new path is an ancestor of, then runs a synchronous scan of every newly
// added root (spec §6: add_folders).
func (e *Engine) AddFolders(paths []string) ([]FolderSummary, error) {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	var added []string

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", p, err)
		}

		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, abs)
		}

		e.mu.Lock()

		if e.coveredByExistingRootLocked(abs) {
			e.mu.Unlock()
			continue
		}

		for existing := range e.roots {
			if isAncestor(abs, existing) {
				delete(e.roots, existing)

				if err := e.persist.DeleteRoot(existing); err != nil {
					slog.Warn("engine: failed to drop subsumed root record", "path", existing, "error", err)
				}
			}
		}

		e.roots[abs] = core.RootFolder{Path: abs, AddedAt: time.Now()}

		e.mu.Unlock()

		if err := e.persist.SaveRoot(e.roots[abs]); err != nil {
			return nil, fmt.Errorf("save root %s: %w", abs, err)
		}

		added = append(added, abs)
	}

	summaries := make([]FolderSummary, 0, len(added))

	for _, root := range added {
		count, err := e.runScan(root)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, FolderSummary{Path: root, FileCount: count})
	}

	return summaries, nil
}

// coveredByExistingRootLocked reports whether abs is already inside (or
// equal to) a current root. Callers must hold e.mu.
func (e *Engine) coveredByExistingRootLocked(abs string) bool {
	for existing := range e.roots {
		if existing == abs || isAncestor(existing, abs) {
			return true
		}
	}

	return false
}

// isAncestor reports whether descendant is nested strictly beneath
// ancestor; a path is not its own ancestor.
func isAncestor(ancestor, descendant string) bool {
	if ancestor == descendant {
		return false
	}

	rel, err := filepath.Rel(ancestor, descendant)
	if err != nil {
		return false
	}

	return rel != ".." && !filepathHasDotDotPrefix(rel)
}

func filepathHasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

// RemoveFolder removes a root and every document under it from the Store,
// the Index, and persistence (spec §6: remove_folder).
func (e *Engine) RemoveFolder(path string) error {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path %s: %w", path, err)
	}

	e.mu.Lock()
	_, ok := e.roots[abs]
	delete(e.roots, abs)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: root %s", core.ErrNotFound, abs)
	}

	e.watch.RemoveRoot(abs)

	if err := e.removeDocumentsUnderPrefix(abs); err != nil {
		return err
	}

	return e.persist.DeleteRoot(abs)
}

func (e *Engine) removeDocumentsUnderPrefix(prefix string) error {
	docs := e.store.AllUnderPrefix(prefix)

	e.store.RemoveUnderPrefix(prefix)

	for _, doc := range docs {
		if err := e.index.Remove(doc.ID); err != nil {
			return fmt.Errorf("remove %s from index: %w", doc.Path, err)
		}
	}

	return e.persist.DeleteDocumentsUnderPrefix(prefix)
}

// GetIndexedFolders returns every current root folder (spec §6).
func (e *Engine) GetIndexedFolders() []FolderSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]FolderSummary, 0, len(e.roots))
	for _, r := range e.roots {
		out = append(out, FolderSummary{Path: r.Path, FileCount: r.FileCount})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out
}

// ScanFolder runs a blocking, idempotent full scan of an already-added root
// (spec §6: scan_folder).
func (e *Engine) ScanFolder(path string) ([]FileSummary, error) {
	e.mailbox.Lock()
	defer e.mailbox.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}

	e.mu.RLock()
	_, ok := e.roots[abs]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: root %s", core.ErrNotFound, abs)
	}

	if _, err := e.runScan(abs); err != nil {
		return nil, err
	}

	docs := e.store.AllUnderPrefix(abs)
	out := make([]FileSummary, 0, len(docs))

	for _, doc := range docs {
		out = append(out, fileSummaryFor(doc))
	}

	return out, nil
}

func fileSummaryFor(doc core.Document) FileSummary {
	return FileSummary{
		Path:       doc.Path,
		Name:       doc.Name,
		Type:       doc.Type,
		Size:       doc.Size,
		ModifiedAt: doc.ModifiedAt,
		HasWarning: doc.HasWarning,
	}
}

// runScan executes the Discovering -> Indexing -> Finalizing -> background
// PDF drain phases of spec §4.5 for a single root, under the caller's
// already-held mailbox lock.
func (e *Engine) runScan(root string) (int, error) {
	watching := e.watch.IsRunning()
	if watching {
		e.watch.RemoveRoot(root)
	}

	e.setState(StateScanning)

	paths, err := walker.Walk(root, e.excl)
	if err != nil {
		e.setState(StateIdle)
		return 0, fmt.Errorf("walk %s: %w", root, err)
	}

	e.bus.Publish(core.Event{Type: core.EventIndexingProgress, Phase: core.PhaseDiscovering, Total: len(paths)})

	e.setState(StateIndexing)

	var pdfPaths []string

	indexed := 0

	for i, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".pdf") {
			pdfPaths = append(pdfPaths, p)
			continue
		}

		e.bus.Publish(core.Event{
			Type: core.EventIndexingProgress, Phase: core.PhaseIndexing,
			Current: i + 1, Total: len(paths), Name: filepath.Base(p),
		})

		if _, err := e.indexOneFile(p); err != nil {
			slog.Warn("engine: skipping file during scan", "path", p, "error", err)
			continue
		}

		indexed++
	}

	e.setState(StateFinalizing)

	e.bus.Publish(core.Event{Type: core.EventIndexingProgress, Phase: core.PhaseFinalizing, Total: len(paths)})

	fileCount := e.store.AllUnderPrefix(root)

	e.mu.Lock()
	if r, ok := e.roots[root]; ok {
		r.FileCount = len(fileCount)
		e.roots[root] = r

		if err := e.persist.SaveRoot(r); err != nil {
			slog.Warn("engine: failed to persist root file count", "path", root, "error", err)
		}
	}
	e.mu.Unlock()

	if watching {
		if err := e.watch.AddRoot(root); err != nil {
			slog.Warn("engine: failed to watch root after scan", "path", root, "error", err)
		}
	}

	e.pdfMu.Lock()
	e.pdfIndexed = 0
	e.pdfSkipped = 0
	e.pdfSkippedFiles = nil
	e.pdfMu.Unlock()

	done := e.queue.Reset(pdfPaths)
	total := len(pdfPaths)

	go e.awaitPDFDrain(done, total)

	if watching {
		e.setState(StateWatching)
	} else {
		e.setState(StateIdle)
	}

	return len(fileCount), nil
}

// indexOneFile extracts path and upserts the resulting document into the
// Store, the Index, and persistence. It is the synchronous path used
// during a scan and for single-file watcher events; background PDF
// extraction uses processBackgroundPDF instead so it can emit pdf-indexed/
// pdf-skipped events.
func (e *Engine) indexOneFile(path string) (core.Document, error) {
	result, err := e.extract.Extract(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("extract %s: %w", path, err)
	}

	if result.Skipped {
		return core.Document{}, fmt.Errorf("%w: %s: %s", core.ErrExtractSkipped, path, result.SkipReason)
	}

	info, err := os.Stat(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("stat %s: %w", path, err)
	}

	doc := core.Document{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		Type:        docTypeFor(path),
		Content:     result.PlainText,
		Structured:  result.Structured,
		HasWarning:  result.Warning != "",
		ExtractedAt: time.Now(),
	}

	doc = e.store.Put(doc)

	if err := e.index.Put(doc); err != nil {
		return core.Document{}, err
	}

	if err := e.persist.SaveDocument(doc); err != nil {
		return core.Document{}, err
	}

	return doc, nil
}

func docTypeFor(path string) core.DocType {
	ext := strings.ToLower(filepath.Ext(path))

	if t, ok := core.DocTypeForExt[ext]; ok {
		return t
	}

	return core.DocTypeText
}

func (e *Engine) watchCancelIfRunning() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.watchCancel != nil {
		e.watchCancel()
		e.watchCancel = nil
	}
}
