package callgraph

import (
	"context"

	"github.com/scopeforge/impactscope/internal/resolver"
	"github.com/scopeforge/impactscope/internal/visitor"
	"github.com/scopeforge/impactscope/internal/workspace"
)

// BuildOptions configures the full-mode builder.
type BuildOptions struct {
	Resolver resolver.Options
}

// Warning is a non-fatal issue surfaced alongside a successful result,
// per spec §7's "structured warnings on the result object".
type Warning struct {
	Category string
	Message  string
}

// BuildResult wraps the produced graph with diagnostics: a
// ResolutionError counter (dropped, unresolved call sites) and any
// per-project CompilationError warnings, so the overall build still
// completes per spec §7's "individual compilation failures never
// poison sibling compilations."
type BuildResult struct {
	Graph              *Graph
	UnresolvedCalls    int
	Warnings           []Warning
	Status             string // "complete" | "partial"
}

// BuildFull produces the complete forward/reverse MethodCallGraph for
// a solution (spec §4.5). Projects are visited in the topological
// order the Workspace Manager already computed; within a project,
// declarations are visited type by type in sorted type-name order,
// so repeated runs on unchanged inputs are
// byte-identical (spec §8 property 2).
func BuildFull(ctx context.Context, manager *workspace.Manager, opts BuildOptions) (*BuildResult, error) {
	res := resolver.New(manager, opts.Resolver)
	g := New()
	result := &BuildResult{Graph: g, Status: "complete"}

	for _, project := range manager.Projects() {
		select {
		case <-ctx.Done():
			result.Status = "partial"
			return result, ctx.Err()
		default:
		}

		comp, err := manager.GetCompilation(project.Path)
		if err != nil {
			result.Status = "partial"
			result.Warnings = append(result.Warnings, Warning{
				Category: "CompilationError",
				Message:  err.Error(),
			})
			continue
		}

		for _, typeFQN := range sortedTypeKeys(comp) {
			for _, decl := range comp.ByType[typeFQN] {
				g.AddNode(decl.Info)

				model, err := manager.GetSemanticModel(decl.Info.FilePath)
				if err != nil {
					continue
				}

				sites := visitor.Visit(comp.Trees[decl.Info.FilePath], decl.Body)
				for _, site := range sites {
					targets := res.Resolve(site, decl, model)
					if len(targets) == 0 {
						result.UnresolvedCalls++
						continue
					}
					for _, target := range targets {
						g.AddEdge(decl.Info.ID, target)
					}
				}
			}
		}
	}

	return result, nil
}

// sortedTypeKeys returns comp.ByType's keys sorted, so visitation order
// (and therefore edge-emission order within a project) is stable
// independent of Go's randomized map iteration.
func sortedTypeKeys(comp *workspace.Compilation) []string {
	out := make([]string, 0, len(comp.ByType))
	for k := range comp.ByType {
		out = append(out, k)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
