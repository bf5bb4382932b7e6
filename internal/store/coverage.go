package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/scopeforge/impactscope/internal/coverage"
	"github.com/scopeforge/impactscope/internal/symbol"
)

// SaveCoverageMap durably persists a bulk CoverageMap result for a
// solution (spec §6's build-coverage-map, made "optionally cached" per
// spec §3's CoverageMap lifecycle note — durable storage is the
// implementation of that option here, layered above the ephemeral
// diskcache tiers).
func (s *Store) SaveCoverageMap(solutionHash string, m coverage.Map) error {
	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin coverage save: %w", err)
	}

	stmt, err := tx.Prepare(
		`REPLACE INTO coverage_entries
		 (test_id, target_id, call_depth, is_direct, confidence, category, framework, call_path, solution_hash, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare coverage insert: %w", err)
	}
	defer stmt.Close()

	for targetKey, infos := range m.Entries {
		for _, info := range infos {
			pathJSON, err := json.Marshal(keysOf(info.CallPath))
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("encode call path: %w", err)
			}
			_, err = stmt.Exec(
				info.Test.Key(), targetKey, info.Depth, info.IsDirect, info.Confidence,
				string(info.Category), string(info.Framework), string(pathJSON), solutionHash, now,
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("insert coverage row: %w", err)
			}
		}
	}
	return tx.Commit()
}

func keysOf(ids []symbol.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Key()
	}
	return out
}

// CoverageRow is the durable row shape for one coverage entry.
type CoverageRow struct {
	TestID     string
	TargetID   string
	CallDepth  int
	IsDirect   bool
	Confidence float64
	Category   string
	Framework  string
	CallPath   []string
	ComputedAt string
}

// CoverageForTarget returns every durably recorded coverage entry for
// a target method within a solution, ordered the same way spec §4.7
// step 5 orders fresh results.
func (s *Store) CoverageForTarget(solutionHash, targetID string) ([]CoverageRow, error) {
	rows, err := s.db.Query(
		`SELECT test_id, target_id, call_depth, is_direct, confidence, category, framework, call_path, computed_at
		 FROM coverage_entries WHERE solution_hash = ? AND target_id = ?
		 ORDER BY confidence DESC, call_depth ASC, test_id ASC`,
		solutionHash, targetID)
	if err != nil {
		return nil, fmt.Errorf("query coverage: %w", err)
	}
	defer rows.Close()

	var out []CoverageRow
	for rows.Next() {
		var r CoverageRow
		var pathJSON string
		if err := rows.Scan(&r.TestID, &r.TargetID, &r.CallDepth, &r.IsDirect, &r.Confidence, &r.Category, &r.Framework, &pathJSON, &r.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan coverage row: %w", err)
		}
		if err := json.Unmarshal([]byte(pathJSON), &r.CallPath); err != nil {
			return nil, fmt.Errorf("decode call path: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
