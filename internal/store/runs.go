package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Run is one durably recorded analysis invocation (spec §6's
// `analyze-solution` "assemblies + test-count summary", kept as
// history so `cache stats`/`cache status` can answer "how did the
// last analysis go" without rerunning it).
type Run struct {
	RunID        string
	SolutionPath string
	SolutionHash string
	Status       string
	MethodCount  int
	TestCount    int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// SolutionHash derives the stable identifier used both as the
// coverage_entries partition key and the diskcache SolutionRoot
// namespace, so the two storage layers agree on solution identity.
func SolutionHash(solutionPath string) string {
	sum := sha256.Sum256([]byte(solutionPath))
	return hex.EncodeToString(sum[:])[:16]
}

// SaveRun records one analysis run.
func (s *Store) SaveRun(r Run) error {
	_, err := s.db.Exec(
		`REPLACE INTO analysis_runs (run_id, solution_path, solution_hash, status, method_count, test_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.SolutionPath, r.SolutionHash, r.Status, r.MethodCount, r.TestCount,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	return nil
}

// LastRun returns the most recently finished run for a solution, if
// any.
func (s *Store) LastRun(solutionHash string) (Run, bool) {
	var r Run
	var started, finished string
	err := s.db.QueryRow(
		`SELECT run_id, solution_path, solution_hash, status, method_count, test_count, started_at, finished_at
		 FROM analysis_runs WHERE solution_hash = ? ORDER BY finished_at DESC LIMIT 1`,
		solutionHash).Scan(&r.RunID, &r.SolutionPath, &r.SolutionHash, &r.Status, &r.MethodCount, &r.TestCount, &started, &finished)
	if err != nil {
		return Run{}, false
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return r, true
}
