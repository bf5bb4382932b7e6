// Package store provides Dolt-backed durable persistence for solution
// analysis history, bulk coverage maps, and project metadata — the
// long-lived record a repeated `analyze-solution`/`build-coverage-map`
// run accumulates across invocations, distinct from the ephemeral,
// evictable Cache Layer in internal/diskcache. Grounded on
// `hargabyte-cortex/internal/store`'s own Dolt wiring, repurposed from
// generic code-graph entities to impactscope's coverage/project
// domain.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/dolthub/driver"
)

// Store manages the {solution-cache-root}/history Dolt repository:
// per-run snapshots of coverage maps and project metadata, versioned
// so `cache status`/`cache stats` can report history across analyses.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the store at dir, initializing the schema if
// the database is new.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	dsn := fmt.Sprintf("file://%s?commitname=impactscope&commitemail=impactscope@local&database=impactscope", filepath.ToSlash(dir))
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt store: %w", err)
	}

	s := &Store{db: db, dbPath: dir}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the store's directory.
func (s *Store) Path() string { return s.dbPath }

// DB returns the underlying connection for callers needing direct
// access.
func (s *Store) DB() *sql.DB { return s.db }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    path VARCHAR(1024) PRIMARY KEY,
    name VARCHAR(256) NOT NULL,
    target_framework VARCHAR(128),
    content_hash VARCHAR(64) NOT NULL,
    source_file_count INT NOT NULL,
    updated_at VARCHAR(64) NOT NULL
);

CREATE TABLE IF NOT EXISTS coverage_entries (
    test_id VARCHAR(1024) NOT NULL,
    target_id VARCHAR(1024) NOT NULL,
    call_depth INT NOT NULL,
    is_direct BOOLEAN NOT NULL,
    confidence DOUBLE NOT NULL,
    category VARCHAR(64) NOT NULL,
    framework VARCHAR(64) NOT NULL,
    call_path TEXT NOT NULL,
    solution_hash VARCHAR(64) NOT NULL,
    computed_at VARCHAR(64) NOT NULL,
    PRIMARY KEY (solution_hash, test_id, target_id)
);

CREATE TABLE IF NOT EXISTS analysis_runs (
    run_id VARCHAR(64) PRIMARY KEY,
    solution_path VARCHAR(1024) NOT NULL,
    solution_hash VARCHAR(64) NOT NULL,
    status VARCHAR(16) NOT NULL,
    method_count INT NOT NULL,
    test_count INT NOT NULL,
    started_at VARCHAR(64) NOT NULL,
    finished_at VARCHAR(64) NOT NULL
);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// Clear removes all rows from every table, used by `cache clear`.
func (s *Store) Clear() error {
	for _, table := range []string{"projects", "coverage_entries", "analysis_runs"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
