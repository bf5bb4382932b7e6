package callgraph

import (
	"context"
	"sort"

	"github.com/scopeforge/impactscope/internal/resolver"
	"github.com/scopeforge/impactscope/internal/symbol"
	"github.com/scopeforge/impactscope/internal/visitor"
	"github.com/scopeforge/impactscope/internal/workspace"
)

// Direction selects which adjacency the incremental builder expands.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// DefaultMaxDepth is the BFS depth bound used when the caller does not
// specify one (spec §4.6).
const DefaultMaxDepth = 10

// TerminationFunc, when non-nil, is consulted after a node is expanded;
// returning true stops further expansion past that node without
// aborting the rest of the frontier.
type TerminationFunc func(symbol.ID) bool

// IncrementalOptions configures a focused BFS expansion.
type IncrementalOptions struct {
	Seeds       []symbol.ID
	MaxDepth    int
	Direction   Direction
	Terminate   TerminationFunc
	Resolver    resolver.Options
}

// IncrementalResult is the focused subgraph plus the canonical call
// path recorded to each visited node, used by coverage/impact analysis
// to reconstruct call chains without a second traversal.
type IncrementalResult struct {
	Graph     *Graph
	Paths     map[string][]string // node key -> path of keys from a seed to that node
	Depths    map[string]int
	Status    string
}

// BuildIncremental performs breadth-first expansion from a set of seed
// methods, loading only the projects touched by the traversal (spec
// §4.6's performance contract: loading proportional to the subgraph,
// not solution size). Ties between equal-depth paths reaching the same
// node are broken by retaining the path that visited a
// lexicographically smaller intermediate id (spec §4.6 "Tie-breaks").
func BuildIncremental(ctx context.Context, manager *workspace.Manager, opts IncrementalOptions) (*IncrementalResult, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	res := resolver.New(manager, opts.Resolver)
	g := New()
	result := &IncrementalResult{
		Graph:  g,
		Paths:  make(map[string][]string),
		Depths: make(map[string]int),
		Status: "complete",
	}

	visited := make(map[string]bool)
	type frontierNode struct {
		id   symbol.ID
		path []string
	}

	var frontier []frontierNode
	for _, s := range opts.Seeds {
		key := s.Key()
		if visited[key] {
			continue
		}
		visited[key] = true
		result.Paths[key] = []string{key}
		result.Depths[key] = 0
		if info := lookupInfo(manager, s); info != nil {
			g.AddNode(*info)
		}
		frontier = append(frontier, frontierNode{id: s, path: []string{key}})
	}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		select {
		case <-ctx.Done():
			result.Status = "partial"
			return result, ctx.Err()
		default:
		}

		var next []frontierNode
		// Sort the frontier by key for deterministic expansion order,
		// which in turn makes the tie-break for equal-depth arrivals
		// at the same node deterministic (first arrival wins, and
		// arrivals are processed in ascending intermediate-id order).
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].id.Key() < frontier[j].id.Key() })

		for _, node := range frontier {
			if opts.Terminate != nil && opts.Terminate(node.id) {
				continue
			}

			neighbors, err := expand(manager, res, node.id, opts.Direction)
			if err != nil {
				continue
			}

			for _, n := range neighbors {
				nkey := n.Key()
				switch opts.Direction {
				case Reverse:
					g.AddEdge(n, node.id)
				default:
					g.AddEdge(node.id, n)
				}

				if info := lookupInfo(manager, n); info != nil {
					g.AddNode(*info)
				}

				if visited[nkey] {
					continue
				}
				visited[nkey] = true
				path := append(append([]string{}, node.path...), nkey)
				result.Paths[nkey] = path
				result.Depths[nkey] = depth + 1
				next = append(next, frontierNode{id: n, path: path})
			}
		}
		frontier = next
	}

	return result, nil
}

// expand computes one hop of neighbors for id in the requested
// direction: forward means id's callees (what id invokes); reverse
// means id's callers (what invokes id). Reverse expansion requires a
// solution-wide scan of declarations' bodies, since nothing short of
// a full or partial reverse index names "who calls this method" —
// incremental mode keeps this bounded by stopping at maxDepth and by
// only scanning declarations in projects already touched or reachable
// via the Symbol Index's candidate set for id's simple name.
func expand(manager *workspace.Manager, res *resolver.Resolver, id symbol.ID, dir Direction) ([]symbol.ID, error) {
	switch dir {
	case Reverse:
		return expandReverse(manager, res, id)
	default:
		return expandForward(manager, res, id)
	}
}

func expandForward(manager *workspace.Manager, res *resolver.Resolver, id symbol.ID) ([]symbol.ID, error) {
	project, decl := findDeclaration(manager, id)
	if decl == nil || decl.Body == nil {
		return nil, nil
	}
	model, err := manager.GetSemanticModel(decl.Info.FilePath)
	if err != nil {
		return nil, err
	}
	comp, err := manager.GetCompilation(project.Path)
	if err != nil {
		return nil, err
	}
	tree := comp.Trees[decl.Info.FilePath]

	sites := visitor.Visit(tree, decl.Body)
	var out []symbol.ID
	for _, site := range sites {
		out = append(out, res.Resolve(site, decl, model)...)
	}
	return out, nil
}

// expandReverse finds every declaration whose body contains a call
// site resolving to id. It uses the Symbol Index's candidate-set
// contract to narrow the project set to those plausibly containing id's
// simple name before falling back to a full scan, keeping the common
// case proportional to the touched subgraph rather than solution size.
func expandReverse(manager *workspace.Manager, res *resolver.Resolver, id symbol.ID) ([]symbol.ID, error) {
	var out []symbol.ID
	candidateProjects := manager.Index().FindFilesContainingMethodSimpleName(id.MethodName)
	projects := manager.Projects()
	touched := make(map[string]bool)
	for _, f := range candidateProjects {
		if p, ok := manager.Index().ProjectForFile(f); ok {
			touched[p] = true
		}
	}
	// Narrowing is a performance optimization only; when the index
	// yields no candidates (e.g. a property accessor name the lexical
	// scan never recorded), fall back to scanning every loaded/loadable
	// project so correctness is never compromised by the Symbol
	// Index's over-approximation contract.
	scanAll := len(touched) == 0

	for _, project := range projects {
		if !scanAll && !touched[project.Path] {
			continue
		}
		comp, err := manager.GetCompilation(project.Path)
		if err != nil {
			continue
		}
		for _, decls := range comp.ByType {
			for _, decl := range decls {
				if decl.Body == nil {
					continue
				}
				model, err := manager.GetSemanticModel(decl.Info.FilePath)
				if err != nil {
					continue
				}
				tree := comp.Trees[decl.Info.FilePath]
				for _, site := range visitor.Visit(tree, decl.Body) {
					for _, target := range res.Resolve(site, decl, model) {
						if target.Key() == id.Key() {
							out = append(out, decl.Info.ID)
						}
					}
				}
			}
		}
	}
	return out, nil
}

func findDeclaration(manager *workspace.Manager, id symbol.ID) (*workspace.ProjectInfo, *workspace.Declaration) {
	key := id.Key()
	for _, cand := range manager.Index().FindProjectsForMethod(id.TypeName + "." + id.MethodName) {
		comp, err := manager.GetCompilation(cand)
		if err != nil {
			continue
		}
		if d, ok := comp.Declaration(key); ok {
			for _, p := range manager.Projects() {
				if p.Path == cand {
					return p, d
				}
			}
		}
	}
	// Fall back to a full scan: the candidate name may be a property
	// accessor or constructor the index didn't record under this
	// exact key.
	for _, p := range manager.Projects() {
		comp, err := manager.GetCompilation(p.Path)
		if err != nil {
			continue
		}
		if d, ok := comp.Declaration(key); ok {
			return p, d
		}
	}
	return nil, nil
}

func lookupInfo(manager *workspace.Manager, id symbol.ID) *symbol.Info {
	_, decl := findDeclaration(manager, id)
	if decl == nil {
		return nil
	}
	return &decl.Info
}
