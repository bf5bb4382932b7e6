package snapshot

// ChangeKind mirrors impact.ChangeKind's vocabulary at the file level;
// kept as its own type since snapshot has no dependency on impact (the
// diff-text-to-method-names mapping is the external diff-parser
// collaborator's job per spec §1, not the snapshot's).
type ChangeKind string

const (
	Added    ChangeKind = "Added"
	Modified ChangeKind = "Modified"
	Deleted  ChangeKind = "Deleted"
)

// Change is one file's classification against the prior snapshot.
type Change struct {
	Path string
	Kind ChangeKind
}

// ComputeChanges enumerates current on disk against the store's
// tracked fingerprints (spec §4.10): linear in file count, content
// hashes (already in current, see Scan) are compared only for
// size/mtime pairs that differ from the tracked record, and files are
// never parsed.
func ComputeChanges(s *Store, current []Record) ([]Change, error) {
	tracked, err := s.All()
	if err != nil {
		return nil, err
	}
	trackedByPath := make(map[string]Record, len(tracked))
	for _, r := range tracked {
		trackedByPath[r.Path] = r
	}

	seen := make(map[string]bool, len(current))
	var changes []Change
	for _, c := range current {
		seen[c.Path] = true
		prior, ok := trackedByPath[c.Path]
		if !ok {
			changes = append(changes, Change{Path: c.Path, Kind: Added})
			continue
		}
		if prior.Size != c.Size || prior.ModTimeUnix != c.ModTimeUnix {
			if prior.ContentHash != c.ContentHash {
				changes = append(changes, Change{Path: c.Path, Kind: Modified})
			}
			// size/mtime differ but content hash matches: a touch with
			// unchanged bytes (spec §8 scenario 5) — not a change.
		}
	}
	for path := range trackedByPath {
		if !seen[path] {
			changes = append(changes, Change{Path: path, Kind: Deleted})
		}
	}
	return changes, nil
}

// Apply commits a batch of changes into the store: Added/Modified
// files are upserted from current, Deleted files are removed.
func Apply(s *Store, changes []Change, currentByPath map[string]Record) error {
	var toPut []Record
	for _, c := range changes {
		switch c.Kind {
		case Added, Modified:
			if r, ok := currentByPath[c.Path]; ok {
				toPut = append(toPut, r)
			}
		case Deleted:
			if err := s.Delete(c.Path); err != nil {
				return err
			}
		}
	}
	return s.PutBulk(toPut)
}

// AffectedCacheKeys returns, from a set of changed file paths, which
// cache keys in keySets (a key -> its file-path dependency set) should
// be treated as misses (spec §4.10's "the set of cache entries whose
// key set intersects changed files").
func AffectedCacheKeys(changes []Change, keySets map[string][]string) []string {
	changedPaths := make(map[string]bool, len(changes))
	for _, c := range changes {
		changedPaths[c.Path] = true
	}
	var affected []string
	for key, paths := range keySets {
		for _, p := range paths {
			if changedPaths[p] {
				affected = append(affected, key)
				break
			}
		}
	}
	return affected
}
