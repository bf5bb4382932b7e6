package coverage

import (
	"context"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/symbol"
)

// Map is the CoverageMap (spec §3): a bulk reverse index from every
// production method reachable from at least one test to its covering
// tests.
type Map struct {
	Entries  map[string][]Info // production method key -> covering tests
	Status   string
	Warnings []string
}

// TestMethods returns every node in g flagged as a test, sorted by key
// for deterministic iteration.
func TestMethods(g *callgraph.Graph) []symbol.ID {
	var out []symbol.ID
	for _, key := range g.Nodes() {
		if info, ok := g.Info[key]; ok && info.IsTest {
			out = append(out, info.ID)
		}
	}
	return out
}

// BuildMap computes, for every production method in g that is
// reachable from at least one test (spec §3's CoverageMap invariant),
// the list of covering TestCoverageInfo entries. It works by forward
// BFS from every test method rather than one reverse BFS per
// production method, since a solution-wide bulk request amortizes
// better that way: each test's forward reachable set is computed once
// and contributes an entry for every production method it reaches
// within limits.
func BuildMap(ctx context.Context, g *callgraph.Graph, limits Limits) Map {
	if limits.MaxVisitedNodes <= 0 {
		limits.MaxVisitedNodes = DefaultLimits.MaxVisitedNodes
	}
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = DefaultLimits.MaxDepth
	}

	result := Map{Entries: make(map[string][]Info), Status: "complete"}

	for _, test := range TestMethods(g) {
		select {
		case <-ctx.Done():
			result.Status = "partial"
			return result
		default:
		}
		forEachReachable(g, test, limits, func(path []string, depth int) {
			targetKey := path[len(path)-1]
			if targetKey == test.Key() {
				return
			}
			info := buildInfo(g, path, depth)
			result.Entries[targetKey] = append(result.Entries[targetKey], info)
		})
	}

	for key := range result.Entries {
		infos := result.Entries[key]
		sortInfos(infos)
		result.Entries[key] = infos
	}

	return result
}

func sortInfos(infos []Info) {
	for i := 1; i < len(infos); i++ {
		for j := i; j > 0 && less(infos[j], infos[j-1]); j-- {
			infos[j], infos[j-1] = infos[j-1], infos[j]
		}
	}
}

func less(a, b Info) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Depth != b.Depth {
		return a.Depth < b.Depth
	}
	return a.Test.Key() < b.Test.Key()
}

// forEachReachable walks forward from seed within limits, invoking fn
// with the shortest path (seed-first) to every node reached, including
// seed itself at depth 0.
func forEachReachable(g *callgraph.Graph, seed symbol.ID, limits Limits, fn func(path []string, depth int)) {
	seedKey := seed.Key()
	visited := map[string]bool{seedKey: true}
	frontier := [][]string{{seedKey}}
	fn(frontier[0], 0)
	visitedCount := 1

	for depth := 0; depth < limits.MaxDepth && len(frontier) > 0; depth++ {
		var next [][]string
		for _, path := range frontier {
			last := path[len(path)-1]
			for _, calleeKey := range g.Callees(last) {
				if visited[calleeKey] {
					continue
				}
				if visitedCount >= limits.MaxVisitedNodes {
					return
				}
				visited[calleeKey] = true
				visitedCount++
				newPath := append(append([]string{}, path...), calleeKey)
				fn(newPath, depth+1)
				next = append(next, newPath)
			}
		}
		frontier = next
	}
}
