package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/localdex/engine/pkg/core"

	// Register the pure-Go sqlite driver.
	_ "modernc.org/sqlite"
)

// Persistence is the SQLite-backed store.db described in spec §4.3: every
// document, root folder, exclusion, and search-history entry the engine
// holds in memory is mirrored here so a restart can reload instead of
// rescanning, adapted from a versioned document store down to a flat
// mirror of the in-memory Document Store.
type Persistence struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database file at path, applies
// the WAL/busy-timeout/synchronous pragmas, and runs the embedded schema.
func Open(path string) (*Persistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
		`PRAGMA foreign_keys=ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if err := execSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Persistence{db: db}, nil
}

// Close releases the underlying connection.
func (p *Persistence) Close() error {
	return p.db.Close()
}

// SaveDocument upserts doc by path.
func (p *Persistence) SaveDocument(doc core.Document) error {
	var structured sql.NullString

	if doc.Structured != nil {
		b, err := json.Marshal(doc.Structured)
		if err != nil {
			return fmt.Errorf("marshal structured content for %s: %w", doc.Path, err)
		}

		structured = sql.NullString{String: string(b), Valid: true}
	}

	_, err := p.db.Exec(`
		INSERT INTO documents (id, path, name, size, modified_at, type, content, structured, has_warning, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			size = excluded.size,
			modified_at = excluded.modified_at,
			type = excluded.type,
			content = excluded.content,
			structured = excluded.structured,
			has_warning = excluded.has_warning,
			extracted_at = excluded.extracted_at
	`, doc.ID, doc.Path, doc.Name, doc.Size, doc.ModifiedAt.Unix(), string(doc.Type), doc.Content,
		structured, boolToInt(doc.HasWarning), doc.ExtractedAt.Unix())
	if err != nil {
		return fmt.Errorf("%w: save document %s: %v", core.ErrIndexWrite, doc.Path, err)
	}

	return nil
}

// DeleteDocument removes the row for path, if any.
func (p *Persistence) DeleteDocument(path string) error {
	if _, err := p.db.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}

	return nil
}

// DeleteDocumentsUnderPrefix removes every row whose path is prefix or
// nested beneath it.
func (p *Persistence) DeleteDocumentsUnderPrefix(prefix string) error {
	_, err := p.db.Exec(`DELETE FROM documents WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		prefix, likePrefix(prefix))
	if err != nil {
		return fmt.Errorf("delete documents under %s: %w", prefix, err)
	}

	return nil
}

// LoadDocuments returns every persisted document.
func (p *Persistence) LoadDocuments() ([]core.Document, error) {
	rows, err := p.db.Query(`
		SELECT id, path, name, size, modified_at, type, content, structured, has_warning, extracted_at
		FROM documents
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document

	for rows.Next() {
		var (
			doc          core.Document
			docType      string
			modifiedUnix int64
			extractUnix  int64
			hasWarning   int
			structured   sql.NullString
		)

		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Name, &doc.Size, &modifiedUnix, &docType,
			&doc.Content, &structured, &hasWarning, &extractUnix); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}

		doc.Type = core.DocType(docType)
		doc.ModifiedAt = time.Unix(modifiedUnix, 0).UTC()
		doc.ExtractedAt = time.Unix(extractUnix, 0).UTC()
		doc.HasWarning = hasWarning != 0

		if structured.Valid {
			var section core.Section
			if err := json.Unmarshal([]byte(structured.String), &section); err != nil {
				return nil, fmt.Errorf("unmarshal structured content for %s: %w", doc.Path, err)
			}

			doc.Structured = &section
		}

		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// SaveRoot upserts a root folder record.
func (p *Persistence) SaveRoot(root core.RootFolder) error {
	_, err := p.db.Exec(`
		INSERT INTO roots (path, file_count, added_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET file_count = excluded.file_count
	`, root.Path, root.FileCount, root.AddedAt.Unix())
	if err != nil {
		return fmt.Errorf("save root %s: %w", root.Path, err)
	}

	return nil
}

// DeleteRoot removes a root folder record.
func (p *Persistence) DeleteRoot(path string) error {
	if _, err := p.db.Exec(`DELETE FROM roots WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete root %s: %w", path, err)
	}

	return nil
}

// LoadRoots returns every persisted root folder.
func (p *Persistence) LoadRoots() ([]core.RootFolder, error) {
	rows, err := p.db.Query(`SELECT path, file_count, added_at FROM roots`)
	if err != nil {
		return nil, fmt.Errorf("query roots: %w", err)
	}
	defer rows.Close()

	var roots []core.RootFolder

	for rows.Next() {
		var (
			root      core.RootFolder
			addedUnix int64
		)

		if err := rows.Scan(&root.Path, &root.FileCount, &addedUnix); err != nil {
			return nil, fmt.Errorf("scan root row: %w", err)
		}

		root.AddedAt = time.Unix(addedUnix, 0).UTC()
		roots = append(roots, root)
	}

	return roots, rows.Err()
}

// SaveExclusion persists an excluded directory.
func (p *Persistence) SaveExclusion(path string) error {
	if _, err := p.db.Exec(`INSERT OR IGNORE INTO exclusions (path) VALUES (?)`, path); err != nil {
		return fmt.Errorf("save exclusion %s: %w", path, err)
	}

	return nil
}

// DeleteExclusion removes an excluded directory record.
func (p *Persistence) DeleteExclusion(path string) error {
	if _, err := p.db.Exec(`DELETE FROM exclusions WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete exclusion %s: %w", path, err)
	}

	return nil
}

// LoadExclusions returns every persisted excluded directory.
func (p *Persistence) LoadExclusions() ([]string, error) {
	rows, err := p.db.Query(`SELECT path FROM exclusions`)
	if err != nil {
		return nil, fmt.Errorf("query exclusions: %w", err)
	}
	defer rows.Close()

	var paths []string

	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan exclusion row: %w", err)
		}

		paths = append(paths, path)
	}

	return paths, rows.Err()
}

// AppendSearchHistory records a query, then trims the table back down to
// core.SearchHistoryCap rows, oldest first.
func (p *Persistence) AppendSearchHistory(entry core.SearchHistoryEntry) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin search history transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`INSERT INTO search_history (query, timestamp, result_count) VALUES (?, ?, ?)`,
		entry.Query, entry.Timestamp.Unix(), entry.ResultCount); err != nil {
		return fmt.Errorf("insert search history: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM search_history WHERE id NOT IN (
			SELECT id FROM search_history ORDER BY timestamp DESC LIMIT ?
		)
	`, core.SearchHistoryCap); err != nil {
		return fmt.Errorf("trim search history: %w", err)
	}

	return tx.Commit()
}

// LoadSearchHistory returns persisted queries, most recent first.
func (p *Persistence) LoadSearchHistory() ([]core.SearchHistoryEntry, error) {
	rows, err := p.db.Query(`SELECT query, timestamp, result_count FROM search_history ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("query search history: %w", err)
	}
	defer rows.Close()

	var entries []core.SearchHistoryEntry

	for rows.Next() {
		var (
			entry core.SearchHistoryEntry
			ts    int64
		)

		if err := rows.Scan(&entry.Query, &ts, &entry.ResultCount); err != nil {
			return nil, fmt.Errorf("scan search history row: %w", err)
		}

		entry.Timestamp = time.Unix(ts, 0).UTC()
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ClearSearchHistory deletes every recorded query.
func (p *Persistence) ClearSearchHistory() error {
	if _, err := p.db.Exec(`DELETE FROM search_history`); err != nil {
		return fmt.Errorf("clear search history: %w", err)
	}

	return nil
}

// RemoveSearchHistoryEntry deletes every row matching query.
func (p *Persistence) RemoveSearchHistoryEntry(query string) error {
	if _, err := p.db.Exec(`DELETE FROM search_history WHERE query = ?`, query); err != nil {
		return fmt.Errorf("remove search history entry %q: %w", query, err)
	}

	return nil
}

// DocumentCount returns the number of persisted documents, used by
// startup invariant checks against the in-memory store.
func (p *Persistence) DocumentCount() (int, error) {
	var count int
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return count, nil
}

// SaveMeta upserts a single key/value pair in the meta table, used for
// small bits of engine-level bookkeeping that don't warrant their own
// table (e.g. the schema version last seen).
func (p *Persistence) SaveMeta(key, value string) error {
	_, err := p.db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("save meta %s: %w", key, err)
	}

	return nil
}

// LoadMeta returns the value for key, and whether it was present.
func (p *Persistence) LoadMeta(key string) (string, bool, error) {
	var value string

	err := p.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}

		return "", false, fmt.Errorf("load meta %s: %w", key, err)
	}

	return value, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// likePrefix escapes a path for use as a LIKE 'prefix<sep>%' pattern.
func likePrefix(prefix string) string {
	escaped := ""

	for _, r := range prefix {
		switch r {
		case '\\', '%', '_':
			escaped += `\` + string(r)
		default:
			escaped += string(r)
		}
	}

	return escaped + string(filepath.Separator) + "%"
}
