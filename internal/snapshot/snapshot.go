// Package snapshot implements Invalidation & Change Detection (spec
// §4.10): a per-solution SQLite-backed fingerprint index of source and
// project files, and linear-time computation of what changed since the
// last snapshot. The engine opens and closes this store but does not
// call ComputeChanges or AffectedCacheKeys, so no cache entry is
// invalidated from a change result.
package snapshot

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the per-solution snapshot database, mirroring the
// SQLite-backed file-index convention `hargabyte-cortex`'s own cache
// package uses for incremental-scan state, repurposed here to hold one
// row per tracked file (path, size, mtime, content hash) instead of a
// bare scan-hash.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
    path TEXT PRIMARY KEY,
    size INTEGER NOT NULL,
    mtime_unix INTEGER NOT NULL,
    content_hash TEXT NOT NULL
);
`

// Open opens or creates the snapshot database dir/snapshot.db. The
// fingerprint index lives only in SQLite; no snapshots/current.json
// file is written or read.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	dbPath := filepath.Join(dir, "snapshot.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record is one tracked file's fingerprint (spec §3/§4.10's "Snapshot
// record").
type Record struct {
	Path        string
	Size        int64
	ModTimeUnix int64
	ContentHash string
}

// HashFile computes a file's content hash (truncated SHA-256, matching
// the corpus's own truncated-hex convention).
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// Put upserts a file's fingerprint.
func (s *Store) Put(r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO files (path, size, mtime_unix, content_hash) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET size=excluded.size, mtime_unix=excluded.mtime_unix, content_hash=excluded.content_hash`,
		r.Path, r.Size, r.ModTimeUnix, r.ContentHash,
	)
	return err
}

// PutBulk upserts many fingerprints in one transaction, the hot path
// for a full-solution snapshot.
func (s *Store) PutBulk(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO files (path, size, mtime_unix, content_hash) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET size=excluded.size, mtime_unix=excluded.mtime_unix, content_hash=excluded.content_hash`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(r.Path, r.Size, r.ModTimeUnix, r.ContentHash); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a file's fingerprint (used after a Deleted change is
// applied).
func (s *Store) Delete(path string) error {
	_, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	return err
}

// All returns every tracked fingerprint.
func (s *Store) All() ([]Record, error) {
	rows, err := s.db.Query(`SELECT path, size, mtime_unix, content_hash FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Path, &r.Size, &r.ModTimeUnix, &r.ContentHash); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the tracked fingerprint for path, if any.
func (s *Store) Get(path string) (Record, bool) {
	var r Record
	err := s.db.QueryRow(`SELECT path, size, mtime_unix, content_hash FROM files WHERE path = ?`, path).
		Scan(&r.Path, &r.Size, &r.ModTimeUnix, &r.ContentHash)
	if err != nil {
		return Record{}, false
	}
	return r, true
}
