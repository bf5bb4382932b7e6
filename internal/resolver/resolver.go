// Package resolver implements the Symbol Resolver: translating a
// syntactic call site (from the Method Call Visitor) into a canonical
// symbol.ID, given the semantic model built by the Workspace Manager.
//
// Because impactscope's "semantic model" is a tree-sitter derived
// declaration index rather than a true compiler binder, resolution is
// name-based rather than type-checked — the same simplification the
// teacher's own CSharpCallGraphExtractor.resolveTarget makes (a plain
// entityByName lookup, ignoring parameter types entirely). Where an
// overload set has more than one candidate, the lexicographically
// first by symbol.ID.Key() is chosen so results stay deterministic;
// this is a documented precision trade-off, not an oversight — true
// overload disambiguation needs a real type checker.
package resolver

import (
	"sort"
	"strings"

	"github.com/scopeforge/impactscope/internal/symbol"
	"github.com/scopeforge/impactscope/internal/visitor"
	"github.com/scopeforge/impactscope/internal/workspace"
)

// InclusiveDispatch, when true, makes Resolve additionally return every
// known implementation of an interface/virtual call alongside the
// statically resolved member (spec §9's "inclusive dispatch mode").
// Off by default per SPEC_FULL.md §4's explicit decision.
type Options struct {
	InclusiveDispatch bool
}

// Resolver resolves call sites against a workspace's loaded
// compilations. It only looks at compilations already loaded by the
// Workspace Manager; callers (the call graph builders) are responsible
// for loading the projects a resolution might need first.
type Resolver struct {
	manager *workspace.Manager
	opts    Options
}

// New returns a Resolver bound to a workspace.
func New(manager *workspace.Manager, opts Options) *Resolver {
	return &Resolver{manager: manager, opts: opts}
}

// Resolve translates one call site found in fromType's declaration
// into zero or more target MethodIDs (more than one only in inclusive
// dispatch mode). An empty result means the call is unresolved (e.g. a
// dynamic call, or a delegate invocation whose target isn't statically
// known) — the caller drops it from the call graph and counts a
// ResolutionError for diagnostics, per spec §7.
func (r *Resolver) Resolve(site visitor.CallSite, from *workspace.Declaration, model *workspace.SemanticModel) []symbol.ID {
	switch site.Kind {
	case visitor.Constructor:
		return r.resolveConstructor(site, model)
	case visitor.PropertyGetter:
		return r.resolveProperty(site, from, model, "get")
	case visitor.PropertySetter:
		return r.resolveProperty(site, from, model, "set")
	case visitor.StaticCall:
		return r.resolveStatic(site, model)
	case visitor.DirectCall, visitor.VirtualCall:
		return r.resolveInstanceOrDirect(site, from, model)
	case visitor.DelegateInvoke:
		return r.resolveDelegate(site, from, model)
	default:
		return nil
	}
}

// resolveConstructor matches `new Type(...)` to a `.ctor` declaration
// on the named type, across every compilation reachable from the
// Symbol Index's candidate project set.
func (r *Resolver) resolveConstructor(site visitor.CallSite, model *workspace.SemanticModel) []symbol.ID {
	candidates := r.declarationsByTypeSuffix(site.Name)
	var matches []*workspace.Declaration
	for _, d := range candidates {
		if d.Kind == workspace.KindConstructor {
			matches = append(matches, d)
		}
	}
	return bestByKey(matches)
}

// resolveProperty matches a get/set accessor call on the named member,
// first within the current type (the common case: `this.Prop` or a
// bare `Prop` inside the declaring type), falling back to a
// solution-wide simple-name search (the Symbol Index's
// over-approximating candidate-set contract) when the receiver's type
// cannot be determined syntactically.
func (r *Resolver) resolveProperty(site visitor.CallSite, from *workspace.Declaration, model *workspace.SemanticModel, accessor string) []symbol.ID {
	simple := site.Name + "." + accessor

	if site.Receiver == "" || site.Receiver == "this" {
		if from != nil {
			if d := r.declarationInType(model, from.TypeFQN, simple); d != nil {
				return []symbol.ID{d.Info.ID}
			}
		}
	}

	candidates := r.declarationsBySimpleName(simple)
	return bestByKey(candidates)
}

// resolveStatic matches `TypeName.Method(...)` by first trying the
// type named in the receiver verbatim (covers fully or partially
// qualified receivers), then by suffix match against known types.
func (r *Resolver) resolveStatic(site visitor.CallSite, model *workspace.SemanticModel) []symbol.ID {
	var matches []*workspace.Declaration
	for _, d := range r.declarationsByTypeSuffix(site.Receiver) {
		if d.Info.SimpleName == site.Name {
			matches = append(matches, d)
		}
	}
	return bestByKey(matches)
}

// resolveInstanceOrDirect handles the common `obj.Method()` and bare
// `Method()` shapes: direct calls within the same type, interface and
// virtual dispatch is represented by resolving to the statically
// declared member (the interface method or declared virtual) per
// spec §4.3 — not to a specific override, unless inclusive dispatch
// is enabled.
func (r *Resolver) resolveInstanceOrDirect(site visitor.CallSite, from *workspace.Declaration, model *workspace.SemanticModel) []symbol.ID {
	if site.Receiver == "" || site.Receiver == "this" || site.Receiver == "base" {
		if from != nil {
			if d := r.declarationInType(model, from.TypeFQN, site.Name); d != nil {
				ids := []symbol.ID{d.Info.ID}
				if r.opts.InclusiveDispatch {
					ids = append(ids, r.knownImplementations(d.Info.ID, site.Name)...)
				}
				return ids
			}
		}
	}

	// Receiver is a variable/field of unknown static type: fall back
	// to the Symbol Index's candidate-set contract (name-based,
	// over-approximating) exactly like the constructor/static paths.
	candidates := r.declarationsBySimpleName(site.Name)
	ids := bestByKey(candidates)
	if r.opts.InclusiveDispatch && len(ids) == 1 {
		ids = append(ids, r.knownImplementations(ids[0], site.Name)...)
	}
	return ids
}

// resolveDelegate only resolves when the receiver is itself a method
// group assigned earlier in the same declaring type — source-level
// tracking of delegate assignment is out of scope, so in practice this
// falls back to the same simple-name search as an instance call;
// genuinely dynamic delegate targets remain unresolved, per spec §4.3.
func (r *Resolver) resolveDelegate(site visitor.CallSite, from *workspace.Declaration, model *workspace.SemanticModel) []symbol.ID {
	return r.resolveInstanceOrDirect(site, from, model)
}

// knownImplementations returns every declaration across loaded
// compilations sharing the same simple member name on a type other
// than id's own declaring type — an approximation of "known
// implementers" since base/interface relationships are not tracked
// precisely (see workspace.enclosingTypeNames). Only used when
// inclusive dispatch mode is explicitly enabled.
func (r *Resolver) knownImplementations(id symbol.ID, simpleName string) []symbol.ID {
	var out []symbol.ID
	for _, d := range r.declarationsBySimpleName(simpleName) {
		if d.Info.ID.Key() != id.Key() {
			out = append(out, d.Info.ID)
		}
	}
	return out
}

func (r *Resolver) declarationInType(model *workspace.SemanticModel, typeFQN, simpleName string) *workspace.Declaration {
	if model == nil || model.Compilation == nil {
		return nil
	}
	for _, d := range model.Compilation.ByType[typeFQN] {
		if d.Info.SimpleName == simpleName {
			return d
		}
	}
	return nil
}

// declarationsBySimpleName scans declarations with the given simple
// name, narrowed via the Symbol Index's candidate-set contract
// (FindFilesContainingMethodSimpleName -> ProjectForFile) to only the
// projects plausibly declaring that name before any compilation is
// triggered — the same narrow-then-fall-back pattern
// callgraph.expandReverse uses, so an ordinary `obj.Method()` call
// through a field or local (the dominant shape: receiver's static
// type unknown) doesn't force full-solution compilation on its own.
// Property-accessor names like "Prop.get" aren't recorded by the
// lexical scan, so they naturally fall through to the every-project
// scan projectsFromFiles performs when narrowing yields nothing.
func (r *Resolver) declarationsBySimpleName(name string) []*workspace.Declaration {
	var out []*workspace.Declaration
	candidateFiles := r.manager.Index().FindFilesContainingMethodSimpleName(name)
	for _, project := range r.projectsFromFiles(candidateFiles) {
		comp, err := r.manager.GetCompilation(project.Path)
		if err != nil {
			continue
		}
		for _, decls := range comp.ByType {
			for _, d := range decls {
				if d.Info.SimpleName == name {
					out = append(out, d)
				}
			}
		}
	}
	return out
}

func (r *Resolver) declarationsByTypeSuffix(typeHint string) []*workspace.Declaration {
	if typeHint == "" {
		return nil
	}
	last := typeHint
	if i := strings.LastIndex(typeHint, "."); i >= 0 {
		last = typeHint[i+1:]
	}

	candidateProjects := r.manager.Index().FindProjectsForTypeSuffix(typeHint)
	var out []*workspace.Declaration
	for _, project := range r.projectsFromPaths(candidateProjects) {
		comp, err := r.manager.GetCompilation(project.Path)
		if err != nil {
			continue
		}
		for fqn, decls := range comp.ByType {
			if fqn == typeHint || strings.HasSuffix(fqn, "."+last) || fqn == last {
				out = append(out, decls...)
			}
		}
	}
	return out
}

// projectsFromPaths restricts the full project list to paths, or
// returns every project when paths is empty — the Symbol Index's
// over-approximation contract means an empty candidate set is "no
// information available," not "no projects match," so correctness
// falls back to a full scan rather than silently returning nothing.
func (r *Resolver) projectsFromPaths(paths []string) []*workspace.ProjectInfo {
	all := r.manager.Projects()
	if len(paths) == 0 {
		return all
	}
	touched := make(map[string]bool, len(paths))
	for _, p := range paths {
		touched[p] = true
	}
	out := make([]*workspace.ProjectInfo, 0, len(touched))
	for _, p := range all {
		if touched[p.Path] {
			out = append(out, p)
		}
	}
	return out
}

// projectsFromFiles resolves each file to its owning project via the
// Symbol Index before delegating to projectsFromPaths.
func (r *Resolver) projectsFromFiles(files []string) []*workspace.ProjectInfo {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if p, ok := r.manager.Index().ProjectForFile(f); ok {
			paths = append(paths, p)
		}
	}
	return r.projectsFromPaths(paths)
}

func bestByKey(decls []*workspace.Declaration) []symbol.ID {
	if len(decls) == 0 {
		return nil
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Info.ID.Key() < decls[j].Info.ID.Key()
	})
	return []symbol.ID{decls[0].Info.ID}
}
