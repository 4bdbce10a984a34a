package engine_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localdex/engine/pkg/core"
	"github.com/localdex/engine/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register the pure-Go sqlite driver for the schema-version test's
	// direct database access.
	_ "modernc.org/sqlite"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	e, err := engine.New(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = e.Close() })

	return e
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// TestSmallTreeSearch covers spec §8's baseline scenario: add a folder with
// a handful of plain-text files, scan it, and confirm a search finds the
// right one by content.
func TestSmallTreeSearch(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "budget.txt", "quarterly budget projections for engineering")
	writeFile(t, dir, "recipe.txt", "pasta with garlic and olive oil")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	results, err := e.SearchIndex("budget", core.SearchOpts{})
	require.NoError(t, err)
	require.Len(t, results.Hits, 1)
	assert.Equal(t, filepath.Join(dir, "budget.txt"), results.Hits[0].Path)
}

// TestExclusionHidesMatches confirms an excluded subdirectory's files are
// neither indexed nor returned by get_all_files once excluded, and come
// back once included again.
func TestExclusionHidesMatches(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	sub := filepath.Join(dir, "vendor")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, sub, "readme.txt", "vendored third party code")
	writeFile(t, dir, "main.txt", "our own project notes")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	results, err := e.SearchIndex("vendored", core.SearchOpts{})
	require.NoError(t, err)
	require.Len(t, results.Hits, 1)

	excludedNow, err := e.ToggleFolderExclusion(sub)
	require.NoError(t, err)
	assert.True(t, excludedNow)

	results, err = e.SearchIndex("vendored", core.SearchOpts{})
	require.NoError(t, err)
	assert.Empty(t, results.Hits)

	for _, f := range e.GetAllFiles() {
		assert.NotEqual(t, filepath.Join(sub, "readme.txt"), f.Path)
	}

	excludedNow, err = e.ToggleFolderExclusion(sub)
	require.NoError(t, err)
	assert.False(t, excludedNow)

	results, err = e.SearchIndex("vendored", core.SearchOpts{})
	require.NoError(t, err)
	assert.Len(t, results.Hits, 1)
}

// TestZeroByteAndHiddenFiles confirms an empty file and a dotfile are
// skipped without failing the scan of the rest of the tree.
func TestZeroByteAndHiddenFiles(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, ".hidden.txt", "secret configuration")
	writeFile(t, dir, "visible.txt", "visible project plan")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	files, err := e.ScanFolder(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}

	assert.Contains(t, names, "visible.txt")
	assert.NotContains(t, names, "empty.txt")
	assert.NotContains(t, names, ".hidden.txt")
}

// TestBooleanQuery confirms AND/OR/NOT style queries supported by the
// underlying full-text engine are accepted and narrow results correctly.
func TestBooleanQuery(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", "apples and oranges")
	writeFile(t, dir, "b.txt", "apples without the other fruit")
	writeFile(t, dir, "c.txt", "oranges only here")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	both, err := e.SearchIndex("+apples +oranges", core.SearchOpts{})
	require.NoError(t, err)
	require.Len(t, both.Hits, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), both.Hits[0].Path)

	either, err := e.SearchIndex("apples OR fruit", core.SearchOpts{})
	require.NoError(t, err)

	var hitPaths []string
	for _, h := range either.Hits {
		hitPaths = append(hitPaths, h.Path)
	}

	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, hitPaths)
}

// TestBooleanQueryNot covers spec §8 scenario 6: "alpha NOT beta" against
// D1="alpha beta" and D2="alpha gamma" must return only D2.
func TestBooleanQueryNot(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "d1.txt", "alpha beta")
	writeFile(t, dir, "d2.txt", "alpha gamma")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	results, err := e.SearchIndex("alpha NOT beta", core.SearchOpts{})
	require.NoError(t, err)
	require.Len(t, results.Hits, 1)
	assert.Equal(t, filepath.Join(dir, "d2.txt"), results.Hits[0].Path)
}

// TestBooleanQueryOperatorsOnly covers spec §8's boundary case: a query
// made up entirely of operator keywords returns an empty result set
// without error, rather than matching documents containing those words
// literally.
func TestBooleanQueryOperatorsOnly(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "ops.txt", "this document uses the words and or not in prose")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	results, err := e.SearchIndex("AND OR NOT", core.SearchOpts{})
	require.NoError(t, err)
	assert.Empty(t, results.Hits)
}

// TestAddFoldersIgnoresNestedRoot confirms a path already covered by an
// existing root is skipped without error instead of becoming a second root.
func TestAddFoldersIgnoresNestedRoot(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	nested := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	summaries, err := e.AddFolders([]string{nested})
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Len(t, e.GetIndexedFolders(), 1)
}

// TestRemoveFolderDropsDocuments confirms remove_folder clears both the
// store and the full-text index for everything under the removed root.
func TestRemoveFolderDropsDocuments(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "notes.txt", "meeting notes from tuesday")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	require.NoError(t, e.RemoveFolder(dir))

	results, err := e.SearchIndex("meeting", core.SearchOpts{})
	require.NoError(t, err)
	assert.Empty(t, results.Hits)
	assert.Empty(t, e.GetIndexedFolders())
}

// TestSaveLoadIndexRoundTrip confirms save_index, a restart on the same data
// directory, and load_index restore documents and roots (spec §4.7).
func TestSaveLoadIndexRoundTrip(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	dir := t.TempDir()

	writeFile(t, dir, "doc.txt", "persisted content for reload")

	first, err := engine.New(dataDir)
	require.NoError(t, err)

	_, err = first.AddFolders([]string{dir})
	require.NoError(t, err)

	require.NoError(t, first.SaveIndex())
	require.NoError(t, first.Close())

	e, err := engine.New(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	assert.Len(t, e.GetIndexedFolders(), 1)

	result, err := e.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Documents)
	assert.Equal(t, 1, result.Roots)

	results, err := e.SearchIndex("persisted", core.SearchOpts{})
	require.NoError(t, err)
	assert.Len(t, results.Hits, 1)
}

// TestSearchHistoryRecordedAndCleared confirms every search_index call is
// recorded and get_search_history reports it back.
func TestSearchHistoryRecordedAndCleared(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "a.txt", "findable content")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	_, err = e.SearchIndex("findable", core.SearchOpts{})
	require.NoError(t, err)

	history, err := e.GetSearchHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "findable", history[0].Query)

	require.NoError(t, e.ClearSearchHistory())

	history, err = e.GetSearchHistory(10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestIndexStatsMatchesStore confirms get_index_stats always reflects a
// fresh recount rather than a cached value (spec §3 invariant).
func TestIndexStatsMatchesStore(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "one.txt", "first document")
	writeFile(t, dir, "two.txt", "second document")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	stats := e.GetIndexStats()
	assert.Equal(t, 2, stats.CountByType[core.DocTypeText])
	assert.Equal(t, 1, stats.FolderCount)
}

// TestWatchDrivenUpdate confirms start_watching picks up a file created
// after the initial scan and the new content becomes searchable.
func TestWatchDrivenUpdate(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	writeFile(t, dir, "initial.txt", "initial content")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	require.NoError(t, e.StartWatching())
	t.Cleanup(func() { _ = e.StopWatching() })

	events, cancel := e.Events()
	defer cancel()

	writeFile(t, dir, "added-later.txt", "content added after watching began")

	deadline := time.After(5 * time.Second)

	for {
		select {
		case <-events:
			results, err := e.SearchIndex("added", core.SearchOpts{})
			if err == nil && len(results.Hits) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watcher to index the new file")
		}
	}
}

// TestStartWatchingTwiceErrors confirms start_watching is rejected while
// already running, and stop_watching is rejected while already stopped.
func TestStartWatchingTwiceErrors(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.StartWatching())
	assert.ErrorIs(t, e.StartWatching(), engine.ErrAlreadyWatching)

	require.NoError(t, e.StopWatching())
	assert.ErrorIs(t, e.StopWatching(), engine.ErrNotWatching)
}

// TestRestartAfterStopWatching confirms the watcher can resume after a
// stop without needing a fresh Engine (pkg/watcher Stop/Close distinction).
func TestRestartAfterStopWatching(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.StartWatching())
	require.NoError(t, e.StopWatching())
	require.NoError(t, e.StartWatching())
	require.NoError(t, e.StopWatching())
}

// TestDeleteFileRemovesFromIndex confirms delete_file removes the document
// from both the filesystem and the index.
func TestDeleteFileRemovesFromIndex(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()

	path := writeFile(t, dir, "todelete.txt", "content to be deleted")

	_, err := e.AddFolders([]string{dir})
	require.NoError(t, err)

	require.NoError(t, e.DeleteFile(path))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	results, err := e.SearchIndex("deleted", core.SearchOpts{})
	require.NoError(t, err)
	assert.Empty(t, results.Hits)
}

// TestSchemaVersionMismatchRejected confirms reopening an engine over a
// store.db stamped with a foreign schema version fails closed rather than
// silently reinterpreting the data.
func TestSchemaVersionMismatchRejected(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	e, err := engine.New(dataDir)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "store.db"))
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE meta SET value = 'unknown-future-version' WHERE key = 'schema_version'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = engine.New(dataDir)
	assert.ErrorIs(t, err, core.ErrCorruptState)
}
