package cmd

import (
	"encoding/json"
	"os"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/impact"
	"github.com/scopeforge/impactscope/internal/symbol"
)

// changeSetFile is the JSON shape a change set is read from. Parsing a
// git diff's text into this shape is the diff-parser external
// collaborator's job per spec §1 ("git-diff text parsing" is listed
// out of scope); ix's own input is this already-structured form, the
// same contract spec §3's ChangeSet entity describes.
type changeSetFile struct {
	Files []struct {
		Path           string   `json:"path"`
		Kind           string   `json:"kind"` // "Added" | "Modified" | "Deleted"
		ChangedMethods []string `json:"changed_methods"`
		ChangedTypes   []string `json:"changed_types"`
	} `json:"files"`
}

// loadChangeSet reads a change-set JSON file from path.
func loadChangeSet(path string) (impact.ChangeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return impact.ChangeSet{}, err
	}
	var f changeSetFile
	if err := json.Unmarshal(data, &f); err != nil {
		return impact.ChangeSet{}, err
	}
	cs := impact.ChangeSet{Files: make([]impact.FileChange, len(f.Files))}
	for i, fc := range f.Files {
		cs.Files[i] = impact.FileChange{
			Path:           fc.Path,
			Kind:           impact.ChangeKind(fc.Kind),
			ChangedMethods: fc.ChangedMethods,
			ChangedTypes:   fc.ChangedTypes,
		}
	}
	return cs, nil
}

// methodLookupFromGraph builds an impact.MethodLookup backed by a
// built call graph's declaration metadata: every method declared in
// the given file whose simple name matches is a candidate, which is
// exactly the over-approximation spec §4.8 step 1 expects the caller
// to resolve (here, trivially — every match is kept, since impact
// analysis unions the candidates' closures rather than picking one).
func methodLookupFromGraph(g *callgraph.Graph) impact.MethodLookup {
	byFile := make(map[string][]symbol.Info)
	for _, info := range g.Info {
		if info.FilePath == "" {
			continue
		}
		byFile[info.FilePath] = append(byFile[info.FilePath], info)
	}
	return func(file, simpleName string) []symbol.ID {
		var out []symbol.ID
		for _, info := range byFile[file] {
			if info.SimpleName == simpleName {
				out = append(out, info.ID)
			}
		}
		return out
	}
}
