package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// Tiers wires the three cooperating caches spec §4.9 names:
// compilation metadata, call-graph fragments, and project metadata,
// each its own directory under a per-solution root, each sized by the
// same tier derived from the solution's project count.
type Tiers struct {
	Compilations *Cache
	CallGraph    *Cache
	Projects     *Cache
}

// SolutionRoot returns {cache-root}/{solution-name-hash}/ (spec §6's
// "Persisted state layout"), the per-solution partition every tier
// lives under.
func SolutionRoot(cacheRoot, solutionPath string) string {
	sum := sha256.Sum256([]byte(solutionPath))
	return filepath.Join(cacheRoot, hex.EncodeToString(sum[:])[:16])
}

// OpenTiers opens (creating if needed) the three tiers for a solution,
// sized by projectCount per spec §4.9.
func OpenTiers(cacheRoot, solutionPath string, projectCount int) (*Tiers, error) {
	root := SolutionRoot(cacheRoot, solutionPath)
	tier := TierFor(projectCount)
	age := AgeCap(projectCount)

	compilations, err := Open(filepath.Join(root, "compilations"), tier, age)
	if err != nil {
		return nil, err
	}
	callGraph, err := Open(filepath.Join(root, "call-graph"), tier, age)
	if err != nil {
		return nil, err
	}
	projects, err := Open(filepath.Join(root, "projects"), tier, age)
	if err != nil {
		return nil, err
	}
	return &Tiers{Compilations: compilations, CallGraph: callGraph, Projects: projects}, nil
}
