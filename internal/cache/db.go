// Package cache maintains a local SQLite catalog of spool sessions so
// `spool browse` and `spool cache stats` don't have to re-read and
// re-parse every file on disk on each invocation. It is grounded on
// the teacher's internal/index package: same WAL-mode sqlite, same
// FTS5 virtual table kept in sync via triggers, same mtime/size
// staleness check driving incremental rebuilds.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS sessions (
    session_key  TEXT PRIMARY KEY,
    vendor       TEXT NOT NULL,
    file_path    TEXT NOT NULL,
    agent        TEXT NOT NULL DEFAULT '',
    recorded_at  TEXT NOT NULL DEFAULT '',
    duration_ms  INTEGER NOT NULL DEFAULT 0,
    entry_count  INTEGER NOT NULL DEFAULT 0,
    mtime        INTEGER NOT NULL DEFAULT 0,
    size         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entries (
    session_key TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    entry_id    TEXT NOT NULL,
    ts          INTEGER NOT NULL DEFAULT 0,
    type        TEXT NOT NULL,
    text        TEXT NOT NULL,
    PRIMARY KEY (session_key, seq)
);

CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
    text,
    content=entries,
    content_rowid=rowid,
    tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
    INSERT INTO entries_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS entries_au AFTER UPDATE ON entries BEGIN
    INSERT INTO entries_fts(entries_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO entries_fts(rowid, text) VALUES (new.rowid, new.text);
END;
`

// schemaVersion is bumped whenever entry extraction logic changes, to
// force a full rebuild on the next open.
const schemaVersion = "1"

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	db.Exec("CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)")
	d := &DB{db: db}
	d.migrateSchemaVersion()
	return d, nil
}

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		d.db.Exec("UPDATE sessions SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type SessionInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetSessionInfo(sessionKey string) (*SessionInfo, error) {
	var info SessionInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE session_key = ?", sessionKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllSessionKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT session_key FROM sessions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteSession(sessionKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries WHERE session_key = ?", sessionKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE session_key = ?", sessionKey); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func (d *DB) EntryCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n)
	return n, err
}

type SessionRow struct {
	SessionKey string
	Vendor     string
	FilePath   string
	Agent      string
	RecordedAt string
	DurationMs int64
	EntryCount int
}

func (d *DB) GetSessionByKey(sessionKey string) (*SessionRow, error) {
	var s SessionRow
	err := d.db.QueryRow(
		`SELECT session_key, vendor, file_path, agent, recorded_at, duration_ms, entry_count
		 FROM sessions WHERE session_key = ?`, sessionKey,
	).Scan(&s.SessionKey, &s.Vendor, &s.FilePath, &s.Agent, &s.RecordedAt, &s.DurationMs, &s.EntryCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DB) ListSessions() ([]SessionRow, error) {
	rows, err := d.db.Query(
		`SELECT session_key, vendor, file_path, agent, recorded_at, duration_ms, entry_count
		 FROM sessions ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.SessionKey, &s.Vendor, &s.FilePath, &s.Agent, &s.RecordedAt, &s.DurationMs, &s.EntryCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type SearchHit struct {
	SessionKey string
	EntryID    string
	Seq        int
	Ts         int64
	Type       string
	Agent      string
	RecordedAt string
	Snippet    string
}

// SearchOptions narrows a Search call, mirroring the teacher's
// search.Options (source/role/since filters, CJK substring fallback).
type SearchOptions struct {
	Query  string
	Vendor string // "" = all
	Type   string // "" = all entry types
	Since  string // "" = no filter, e.g. "2026-01-01"
	Limit  int
}

// containsCJK reports whether s contains a CJK Unified Ideograph; FTS5's
// unicode61 tokenizer does not segment CJK text into searchable tokens,
// so such queries fall back to a LIKE scan.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Search runs a full-text query across all indexed entry text,
// deduplicated to the first hit per session (in FTS5 rank order, or in
// recorded_at order for the CJK LIKE fallback).
func (d *DB) Search(opts SearchOptions) ([]SearchHit, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var hits []SearchHit
	var err error
	if containsCJK(opts.Query) {
		hits, err = d.searchLike(opts)
	} else {
		hits, err = d.searchFTS(opts)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var deduped []SearchHit
	for _, h := range hits {
		if seen[h.SessionKey] {
			continue
		}
		seen[h.SessionKey] = true
		deduped = append(deduped, h)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

func (d *DB) searchFTS(opts SearchOptions) ([]SearchHit, error) {
	conditions := []string{"entries_fts MATCH ?"}
	args := []interface{}{opts.Query}

	if opts.Vendor != "" {
		conditions = append(conditions, "s.vendor = ?")
		args = append(args, opts.Vendor)
	}
	if opts.Type != "" {
		conditions = append(conditions, "e.type = ?")
		args = append(args, opts.Type)
	}
	if opts.Since != "" {
		conditions = append(conditions, "s.recorded_at >= ?")
		args = append(args, opts.Since)
	}
	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT e.session_key, e.entry_id, e.seq, e.ts, e.type, s.agent, s.recorded_at,
		       snippet(entries_fts, 0, '[', ']', '...', 8)
		FROM entries_fts
		JOIN entries e ON entries_fts.rowid = e.rowid
		JOIN sessions s ON e.session_key = s.session_key
		WHERE %s
		ORDER BY rank
		LIMIT ?`, where)
	args = append(args, opts.Limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.SessionKey, &h.EntryID, &h.Seq, &h.Ts, &h.Type, &h.Agent, &h.RecordedAt, &h.Snippet); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (d *DB) searchLike(opts SearchOptions) ([]SearchHit, error) {
	conditions := []string{"e.text LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}

	if opts.Vendor != "" {
		conditions = append(conditions, "s.vendor = ?")
		args = append(args, opts.Vendor)
	}
	if opts.Type != "" {
		conditions = append(conditions, "e.type = ?")
		args = append(args, opts.Type)
	}
	if opts.Since != "" {
		conditions = append(conditions, "s.recorded_at >= ?")
		args = append(args, opts.Since)
	}
	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT e.session_key, e.entry_id, e.seq, e.ts, e.type, s.agent, s.recorded_at, e.text
		FROM entries e
		JOIN sessions s ON e.session_key = s.session_key
		WHERE %s
		ORDER BY s.recorded_at DESC
		LIMIT ?`, where)
	args = append(args, opts.Limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var fullText string
		if err := rows.Scan(&h.SessionKey, &h.EntryID, &h.Seq, &h.Ts, &h.Type, &h.Agent, &h.RecordedAt, &fullText); err != nil {
			return nil, err
		}
		h.Snippet = makeSnippet(fullText, opts.Query, 30)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// makeSnippet extracts a window of text around the first occurrence of
// query, marking the match with [ ] brackets to match the FTS5 snippet
// rendering used by searchFTS.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 {
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix, suffix := "", ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) + "[" + string(runes[runePos:runePos+len(qRunes)]) + "]" + string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}
