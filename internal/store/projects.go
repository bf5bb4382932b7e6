package store

import (
	"fmt"
	"time"

	"github.com/scopeforge/impactscope/internal/workspace"
)

// SaveProject upserts a ProjectInfo's durable metadata (spec §6's
// "projects/" persisted state, promoted here from the evictable
// diskcache tier into durable history so `cache status` can report on
// it without a live workspace).
func (s *Store) SaveProject(p *workspace.ProjectInfo) error {
	_, err := s.db.Exec(
		`REPLACE INTO projects (path, name, target_framework, content_hash, source_file_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Path, p.Name, p.TargetFramework, p.ContentHash, len(p.SourceFiles), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.Path, err)
	}
	return nil
}

// ProjectRow is the durable row shape for a project (a flattened
// ProjectInfo, since only the metadata needed for `cache status`
// survives — source file lists and dependency edges are recomputed
// from disk, not persisted here).
type ProjectRow struct {
	Path            string
	Name            string
	TargetFramework string
	ContentHash     string
	SourceFileCount int
	UpdatedAt       string
}

// Projects returns every durably recorded project.
func (s *Store) Projects() ([]ProjectRow, error) {
	rows, err := s.db.Query(`SELECT path, name, target_framework, content_hash, source_file_count, updated_at FROM projects ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectRow
	for rows.Next() {
		var r ProjectRow
		if err := rows.Scan(&r.Path, &r.Name, &r.TargetFramework, &r.ContentHash, &r.SourceFileCount, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ContentHashChanged reports whether path's recorded content hash
// differs from newHash (or is absent), the durable-store analogue of
// spec §4.9's "compiler-version change invalidates every cache at
// once" — here used at the project granularity.
func (s *Store) ContentHashChanged(path, newHash string) (bool, error) {
	var hash string
	err := s.db.QueryRow(`SELECT content_hash FROM projects WHERE path = ?`, path).Scan(&hash)
	if err != nil {
		return true, nil
	}
	return hash != newHash, nil
}
