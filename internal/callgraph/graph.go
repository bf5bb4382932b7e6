// Package callgraph implements the Call Graph Builder: a full-solution
// builder that enumerates every method in topological project order,
// and an incremental builder that expands a focused subgraph from a
// set of seed methods by breadth-first search. Both modes share the
// same MethodCallGraph representation, the Workspace Manager, the
// Symbol Resolver, and the Method Call Visitor.
package callgraph

import (
	"sort"

	"github.com/scopeforge/impactscope/internal/symbol"
)

// Graph is the MethodCallGraph (spec §3): forward and reverse
// adjacency keyed by symbol.ID.Key(), plus declaration metadata for
// every node that appears as a key or a value (possibly with an empty
// edge set). Iteration order over Forward/Reverse adjacency lists is
// insertion order, preserved by the builders for determinism (spec
// §4.5's "byte-identical" requirement).
type Graph struct {
	Forward map[string][]string        // caller key -> callee keys, insertion order
	Reverse map[string][]string        // callee key -> caller keys, insertion order
	Info    map[string]symbol.Info     // method key -> declaration info
	forwardSet map[string]map[string]bool
	reverseSet map[string]map[string]bool
}

// New returns an empty Graph ready for incremental population.
func New() *Graph {
	return &Graph{
		Forward:    make(map[string][]string),
		Reverse:    make(map[string][]string),
		Info:       make(map[string]symbol.Info),
		forwardSet: make(map[string]map[string]bool),
		reverseSet: make(map[string]map[string]bool),
	}
}

// ensure registers id with an empty edge set if it is not already
// present, satisfying the invariant that every key or value has an
// entry.
func (g *Graph) ensure(id symbol.ID) {
	key := id.Key()
	if _, ok := g.Forward[key]; !ok {
		g.Forward[key] = nil
		g.forwardSet[key] = make(map[string]bool)
	}
	if _, ok := g.Reverse[key]; !ok {
		g.Reverse[key] = nil
		g.reverseSet[key] = make(map[string]bool)
	}
}

// AddNode registers a method's declaration metadata, creating the node
// if it doesn't exist yet, or refreshing Info if the method was
// previously seen only as an external stub.
func (g *Graph) AddNode(info symbol.Info) {
	g.ensure(info.ID)
	key := info.ID.Key()
	if existing, ok := g.Info[key]; !ok || existing.IsExternal {
		g.Info[key] = info
	}
}

// AddEdge records a forward edge from caller to callee and its
// transpose in the reverse graph. Duplicate edges are coalesced (the
// call graph is a set of edges). If callee has no declaration info
// yet, a stub marking it external is created so the invariant that
// every key or value has an entry holds even before the callee's
// owning project is visited.
func (g *Graph) AddEdge(caller, callee symbol.ID) {
	g.ensure(caller)
	g.ensure(callee)

	ck, lk := caller.Key(), callee.Key()
	if g.forwardSet[ck][lk] {
		return
	}
	g.forwardSet[ck][lk] = true
	g.Forward[ck] = append(g.Forward[ck], lk)

	if !g.reverseSet[lk][ck] {
		g.reverseSet[lk][ck] = true
		g.Reverse[lk] = append(g.Reverse[lk], ck)
	}

	if _, ok := g.Info[lk]; !ok {
		g.Info[lk] = symbol.Info{ID: callee, SimpleName: callee.MethodName, ContainingType: callee.TypeName, IsExternal: true}
	}
}

// Callees returns the forward adjacency list for a method key, nil if
// the key is unknown.
func (g *Graph) Callees(key string) []string { return g.Forward[key] }

// Callers returns the reverse adjacency list for a method key, nil if
// the key is unknown.
func (g *Graph) Callers(key string) []string { return g.Reverse[key] }

// Nodes returns every method key known to the graph, sorted for
// callers that need a deterministic full enumeration (e.g. cache
// serialization); Forward/Reverse themselves retain insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.Info))
	for k := range g.Info {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// VerifyTranspose checks the invariant that the reverse graph is the
// exact transpose of the forward graph (spec §8 property 1). Intended
// for tests and FatalInternalError guards, not the hot path.
func (g *Graph) VerifyTranspose() bool {
	for ck, callees := range g.Forward {
		for _, lk := range callees {
			found := false
			for _, c := range g.Reverse[lk] {
				if c == ck {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for lk, callers := range g.Reverse {
		for _, ck := range callers {
			found := false
			for _, l := range g.Forward[ck] {
				if l == lk {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// Merge folds other's nodes and edges into g. BuildIncremental does not
// use it; it adds nodes and edges to its one graph directly.
func (g *Graph) Merge(other *Graph) {
	for key, info := range other.Info {
		g.ensure(info.ID)
		if existing, ok := g.Info[key]; !ok || existing.IsExternal {
			g.Info[key] = info
		}
	}
	for ck, callees := range other.Forward {
		for _, lk := range callees {
			if g.Info[ck].ID.Key() == "" {
				continue
			}
			g.AddEdge(g.Info[ck].ID, g.Info[lk].ID)
		}
	}
}
