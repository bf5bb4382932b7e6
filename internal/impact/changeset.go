// Package impact implements the Impact Analyzer: translating a
// ChangeSet into the affected-method closure and a ranked, optionally
// constrained test selection (spec §4.8).
package impact

import (
	"time"

	"github.com/scopeforge/impactscope/internal/symbol"
)

// ChangeKind enumerates how a file changed.
type ChangeKind string

const (
	Added    ChangeKind = "Added"
	Modified ChangeKind = "Modified"
	Deleted  ChangeKind = "Deleted"
)

// FileChange is one per-file entry of a ChangeSet (spec §3). Deleted
// files carry no changed methods by construction; the diff parser that
// produces a ChangeSet is an external collaborator per spec §1.
type FileChange struct {
	Path           string
	Kind           ChangeKind
	ChangedMethods []string // simple names
	ChangedTypes   []string // simple names
	Timestamp      time.Time
}

// ChangeSet is the immutable input to impact analysis.
type ChangeSet struct {
	Files []FileChange
}

// ConfidenceLevel is spec §6's selection confidence-level enumeration,
// mapping to a (selection cap, time-budget) pair.
type ConfidenceLevel string

const (
	Fast   ConfidenceLevel = "Fast"
	Medium ConfidenceLevel = "Medium"
	High   ConfidenceLevel = "High"
	Full   ConfidenceLevel = "Full"
)

// thresholds implements spec §4.8 step 5's bucketing and §6's
// per-level selection caps. Fast/Medium/High progressively relax the
// minimum confidence required for inclusion so that
// Fast ⊆ Medium ⊆ High ⊆ Full (spec §8 property 9, "Selection
// monotonicity").
var thresholds = map[ConfidenceLevel]float64{
	Fast:   0.70,
	Medium: 0.40,
	High:   0.10,
	Full:   0.0,
}

// Bucket is the spec §4.8 confidence bucket label.
type Bucket string

const (
	BucketHigh   Bucket = "High"
	BucketMedium Bucket = "Medium"
	BucketLow    Bucket = "Low"
)

// BucketFor classifies a confidence score per spec §4.8 step 5: High
// >= 0.70, Medium >= 0.40, Low < 0.40.
func BucketFor(confidence float64) Bucket {
	switch {
	case confidence >= 0.70:
		return BucketHigh
	case confidence >= 0.40:
		return BucketMedium
	default:
		return BucketLow
	}
}

// ThresholdFor returns the minimum confidence required for inclusion
// at a given selection confidence level.
func ThresholdFor(level ConfidenceLevel) float64 {
	if t, ok := thresholds[level]; ok {
		return t
	}
	return thresholds[Full]
}

// MethodLookup resolves a ChangeSet's per-file changed method
// simple names into symbol.IDs, given a lookup from (file, simple
// name) to every declaration with that name in that file's containing
// type. The diff parser only knows simple names (from source-level
// diff hunks); disambiguating overloads to a specific symbol.ID
// requires the semantic model, so this is kept as a caller-supplied
// resolver function rather than implemented against a concrete
// workspace here, keeping impact analysis decoupled from parsing.
type MethodLookup func(file, simpleName string) []symbol.ID

// AffectedMethods computes the union of changed-or-added-or-deleted
// method ids named across every non-deleted file in cs (spec §4.8 step
// 1). Deleted files are skipped: their methods no longer exist to seed
// forward analysis, though their removal may still be worth surfacing
// by the caller as a separate signal.
func AffectedMethods(cs ChangeSet, lookup MethodLookup) []symbol.ID {
	seen := make(map[string]bool)
	var out []symbol.ID
	for _, f := range cs.Files {
		if f.Kind == Deleted {
			continue
		}
		for _, name := range f.ChangedMethods {
			for _, id := range lookup(f.Path, name) {
				key := id.Key()
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, id)
			}
		}
	}
	return out
}
