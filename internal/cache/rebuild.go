package cache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asbjornb/spool/internal/adapter"
	"github.com/asbjornb/spool/internal/discover"
	"github.com/asbjornb/spool/internal/format"
)

// Stats summarizes one Rebuild pass, grounded on the teacher's
// index.Stats / IndexAll reporting shape.
type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// Rebuild walks the configured discovery roots, loads each file as a
// Session (decoding .spool files directly, converting raw vendor logs
// through internal/adapter otherwise), and refreshes the cache's
// sessions/entries tables incrementally by mtime+size.
func Rebuild(db *DB, roots discover.Roots, spoolDirs []string) (Stats, error) {
	var stats Stats

	files, err := discover.Walk(roots)
	if err != nil {
		return stats, fmt.Errorf("discover: %w", err)
	}
	spoolFiles, err := walkSpoolFiles(spoolDirs)
	if err != nil {
		return stats, fmt.Errorf("discover spool files: %w", err)
	}

	seen := make(map[string]struct{})

	for _, f := range files {
		stats.Scanned++
		key := f.Path
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			stats.Errors++
			continue
		}
		mtime, size := info.ModTime().Unix(), info.Size()
		seen[key] = struct{}{}

		needs, err := needsUpdate(db, key, mtime, size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		raw, err := os.ReadFile(f.Path)
		if err != nil {
			stats.Errors++
			continue
		}
		vendor, session, err := adapter.DetectAndConvert(raw)
		if err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: convert %s: %v\n", f.Path, err)
			continue
		}
		if err := indexSession(db, key, vendor, f.Path, session, mtime, size); err != nil {
			stats.Errors++
			continue
		}
		stats.Updated++
	}

	for _, path := range spoolFiles {
		stats.Scanned++
		key := path
		info, statErr := os.Stat(path)
		if statErr != nil {
			stats.Errors++
			continue
		}
		mtime, size := info.ModTime().Unix(), info.Size()
		seen[key] = struct{}{}

		needs, err := needsUpdate(db, key, mtime, size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			stats.Errors++
			continue
		}
		session, err := format.Read(bytes.NewReader(raw), format.ReadOptions{Strict: false})
		if err != nil {
			stats.Errors++
			continue
		}
		if err := indexSession(db, key, "spool", path, session, mtime, size); err != nil {
			stats.Errors++
			continue
		}
		stats.Updated++
	}

	pruned, err := pruneSessions(db, seen)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func walkSpoolFiles(dirs []string) ([]string, error) {
	var out []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, ".spool") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return out, nil
}

func needsUpdate(db *DB, sessionKey string, mtime, size int64) (bool, error) {
	info, err := db.GetSessionInfo(sessionKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func indexSession(db *DB, sessionKey, vendor, path string, session *format.Session, mtime, size int64) error {
	if err := db.DeleteSession(sessionKey); err != nil {
		return err
	}

	header := session.Header()
	if header == nil {
		return fmt.Errorf("session %s: missing or misplaced header", sessionKey)
	}
	var durationMs int64
	if header.DurationMs != nil {
		durationMs = *header.DurationMs
	} else {
		durationMs = session.DurationMs()
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (session_key, vendor, file_path, agent, recorded_at, duration_ms, entry_count, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionKey, vendor, path, header.Agent, header.RecordedAt, durationMs, len(session.Entries), mtime, size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO entries (session_key, seq, entry_id, ts, type, text) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range session.Entries {
		text := searchableText(e)
		if text == "" {
			continue
		}
		if _, err := stmt.Exec(sessionKey, i, e.EntryID(), e.Timestamp(), e.EntryType(), text); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// searchableText extracts the portion of an entry worth full-text
// indexing. Entry kinds with no natural prose payload (session header,
// subagent boundaries, redaction markers) are skipped.
func searchableText(e format.Entry) string {
	switch v := e.(type) {
	case *format.PromptEntry:
		return v.Content
	case *format.ThinkingEntry:
		return v.Content
	case *format.ResponseEntry:
		return v.Content
	case *format.ErrorEntry:
		return v.Message
	case *format.AnnotationEntry:
		return v.Content
	case *format.ToolCallEntry:
		return v.Tool + " " + string(v.Input)
	case *format.ToolResultEntry:
		if v.Output != nil && !v.Output.IsBinary() {
			return v.Output.Text
		}
		if v.Error != nil {
			return *v.Error
		}
		return ""
	default:
		return ""
	}
}

func pruneSessions(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllSessionKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteSession(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
