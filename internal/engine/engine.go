// Package engine wires the Workspace Manager, Call Graph Builder, Test
// Coverage Analyzer, Impact Analyzer, Cache Layer, and durable Store
// into the external interfaces spec §6 names: analyze-solution,
// build-call-graph, find-tests-for-method, build-coverage-map,
// analyze-diff, select-tests, trace-execution, and the cache
// subcommands. Grounded on `hargabyte-cortex/internal/cmd`'s pattern
// of thin command handlers delegating to package-level operations —
// here the delegate is one Engine rather than scattered globals.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/config"
	"github.com/scopeforge/impactscope/internal/coverage"
	"github.com/scopeforge/impactscope/internal/diskcache"
	"github.com/scopeforge/impactscope/internal/impact"
	"github.com/scopeforge/impactscope/internal/snapshot"
	"github.com/scopeforge/impactscope/internal/store"
	"github.com/scopeforge/impactscope/internal/symbol"
	"github.com/scopeforge/impactscope/internal/workspace"
)

// Engine holds one open solution's live state: the Workspace Manager,
// its most recently built call graph (if any), and the persistence
// layers scoped to that solution.
type Engine struct {
	Config       *config.Config
	SolutionPath string

	manager *workspace.Manager
	graph   *callgraph.Graph

	cacheRoot string
	tiers     *diskcache.Tiers
	snap      *snapshot.Store
	hist      *store.Store
}

// Open initializes the Workspace Manager for a solution and opens the
// Cache Layer tiers and durable store rooted at cfg.Cache.Dir (or the
// default ".ix/cache" under the solution's directory).
func Open(ctx context.Context, solutionPath string, cfg *config.Config) (*Engine, error) {
	manager := workspace.NewManager()
	if err := manager.Initialize(solutionPath); err != nil {
		return nil, fmt.Errorf("initialize workspace: %w", err)
	}

	cacheRoot := cfg.Cache.Dir
	if cacheRoot == "" {
		dir, err := config.EnsureConfigDir(solutionDir(solutionPath))
		if err != nil {
			return nil, err
		}
		cacheRoot = dir + "/cache"
	}

	tiers, err := diskcache.OpenTiers(cacheRoot, solutionPath, len(manager.Projects()))
	if err != nil {
		return nil, fmt.Errorf("open cache tiers: %w", err)
	}

	snapDir := diskcache.SolutionRoot(cacheRoot, solutionPath) + "-snapshot"
	snap, err := snapshot.Open(snapDir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	histDir := diskcache.SolutionRoot(cacheRoot, solutionPath) + "-history"
	hist, err := store.Open(histDir)
	if err != nil {
		snap.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}

	return &Engine{
		Config:       cfg,
		SolutionPath: solutionPath,
		manager:      manager,
		cacheRoot:    cacheRoot,
		tiers:        tiers,
		snap:         snap,
		hist:         hist,
	}, nil
}

func solutionDir(solutionPath string) string {
	for i := len(solutionPath) - 1; i >= 0; i-- {
		if solutionPath[i] == '/' || solutionPath[i] == '\\' {
			return solutionPath[:i]
		}
	}
	return "."
}

// Close releases every open resource.
func (e *Engine) Close() error {
	e.manager.Dispose()
	if err := e.snap.Close(); err != nil {
		return err
	}
	return e.hist.Close()
}

// Manager exposes the underlying Workspace Manager for callers that
// need direct access (e.g. an MCP tool describing a single project).
func (e *Engine) Manager() *workspace.Manager { return e.manager }

// SolutionSummary is analyze-solution's internal result, before wire
// conversion.
type SolutionSummary struct {
	Projects    []string
	MethodCount int
	TestCount   int
	Warnings    []string
}

// AnalyzeSolution builds the full call graph (so method/test counts
// are accurate) and records a run in the durable store (spec §6's
// analyze-solution).
func (e *Engine) AnalyzeSolution(ctx context.Context) (SolutionSummary, error) {
	started := time.Now()

	result, err := callgraph.BuildFull(ctx, e.manager, callgraph.BuildOptions{})
	if err != nil && result == nil {
		return SolutionSummary{}, fmt.Errorf("build call graph: %w", err)
	}
	e.graph = result.Graph

	var warnings []string
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Category+": "+w.Message)
	}

	testCount := len(coverage.TestMethods(e.graph))

	var projectPaths []string
	for _, p := range e.manager.Projects() {
		projectPaths = append(projectPaths, p.Path)
		_ = e.hist.SaveProject(p)
	}

	solutionHash := store.SolutionHash(e.SolutionPath)
	run := store.Run{
		RunID:        fmt.Sprintf("%s-%d", solutionHash, started.UnixNano()),
		SolutionPath: e.SolutionPath,
		SolutionHash: solutionHash,
		Status:       result.Status,
		MethodCount:  len(e.graph.Info),
		TestCount:    testCount,
		StartedAt:    started,
		FinishedAt:   time.Now(),
	}
	if err := e.hist.SaveRun(run); err != nil {
		return SolutionSummary{}, fmt.Errorf("save run: %w", err)
	}

	return SolutionSummary{
		Projects:    projectPaths,
		MethodCount: len(e.graph.Info),
		TestCount:   testCount,
		Warnings:    warnings,
	}, nil
}

// BuildCallGraphFull runs the full-mode builder and caches the result.
func (e *Engine) BuildCallGraphFull(ctx context.Context) (*callgraph.Graph, error) {
	result, err := callgraph.BuildFull(ctx, e.manager, callgraph.BuildOptions{})
	if err != nil && result == nil {
		return nil, err
	}
	e.graph = result.Graph
	return e.graph, nil
}

// BuildCallGraphIncremental runs the focused BFS builder from a set of
// seed methods, per spec §4.6.
func (e *Engine) BuildCallGraphIncremental(ctx context.Context, seeds []symbol.ID, maxDepth int, dir callgraph.Direction) (*callgraph.IncrementalResult, error) {
	if maxDepth <= 0 {
		maxDepth = callgraph.DefaultMaxDepth
	}
	return callgraph.BuildIncremental(ctx, e.manager, callgraph.IncrementalOptions{
		Seeds:     seeds,
		MaxDepth:  maxDepth,
		Direction: dir,
	})
}

// currentGraph returns the last built graph, building a full one on
// demand the first time it's needed. Reserved for operations that are
// inherently solution-wide — i.e. those that must first discover
// every test method before they can do anything, so no seed set
// exists to bound a focused build (BuildCoverageMap, below, and
// CacheWarmUp).
func (e *Engine) currentGraph(ctx context.Context) (*callgraph.Graph, error) {
	if e.graph != nil {
		return e.graph, nil
	}
	return e.BuildCallGraphFull(ctx)
}

// graphForSeeds returns a graph sufficient to answer a reverse
// coverage query rooted at seeds: the cached full graph if one has
// already been built (e.g. by a prior analyze-solution call, in which
// case reusing it is free), or otherwise a focused incremental
// reverse BFS bounded to maxDepth from just these seeds — so a
// single-method or small-changeset query loads only the projects the
// traversal actually touches, rather than the whole solution (spec
// §4.1, §4.6).
func (e *Engine) graphForSeeds(ctx context.Context, seeds []symbol.ID, maxDepth int) (*callgraph.Graph, error) {
	if e.graph != nil {
		return e.graph, nil
	}
	if maxDepth <= 0 {
		maxDepth = callgraph.DefaultMaxDepth
	}
	result, err := callgraph.BuildIncremental(ctx, e.manager, callgraph.IncrementalOptions{
		Seeds:     seeds,
		MaxDepth:  maxDepth,
		Direction: callgraph.Reverse,
	})
	if err != nil {
		return nil, err
	}
	return result.Graph, nil
}

// FindTestsForMethod answers spec §6's find-tests-for-method with a
// reverse BFS seeded at target alone, not a full-solution build.
func (e *Engine) FindTestsForMethod(ctx context.Context, target symbol.ID) (coverage.Result, error) {
	g, err := e.graphForSeeds(ctx, []symbol.ID{target}, coverage.DefaultLimits.MaxDepth)
	if err != nil {
		return coverage.Result{}, err
	}
	return coverage.FindTestsForMethod(ctx, g, target, coverage.DefaultLimits), nil
}

// BuildCoverageMap answers spec §6's build-coverage-map and persists
// the result to the durable store's coverage_entries table. Unlike FindTestsForMethod and
// AnalyzeDiff, this operation has no caller-supplied seed set to bound
// an incremental build: it must enumerate every test method in the
// solution before it can BFS from any of them, so it genuinely needs
// the full call graph.
func (e *Engine) BuildCoverageMap(ctx context.Context) (coverage.Map, error) {
	g, err := e.currentGraph(ctx)
	if err != nil {
		return coverage.Map{}, err
	}
	m := coverage.BuildMap(ctx, g, coverage.DefaultLimits)
	solutionHash := store.SolutionHash(e.SolutionPath)
	if err := e.hist.SaveCoverageMap(solutionHash, m); err != nil {
		return m, fmt.Errorf("persist coverage map: %w", err)
	}
	return m, nil
}

// AnalyzeDiff answers spec §6's analyze-diff with a reverse BFS seeded
// at exactly the changed methods, not a full-solution build.
func (e *Engine) AnalyzeDiff(ctx context.Context, cs impact.ChangeSet, lookup impact.MethodLookup) ([]impact.TestSelection, []symbol.ID, error) {
	changed := impact.AffectedMethods(cs, lookup)
	selections, err := e.AnalyzeDiffIDs(ctx, changed)
	if err != nil {
		return nil, nil, err
	}
	return selections, changed, nil
}

// AnalyzeDiffIDs is AnalyzeDiff for a caller that already has canonical
// method ids (e.g. an MCP tool taking `changed_method_ids` directly,
// with no file-based ChangeSet to resolve) — still seed-driven, still
// never forcing a full-solution build on its own.
func (e *Engine) AnalyzeDiffIDs(ctx context.Context, changed []symbol.ID) ([]impact.TestSelection, error) {
	g, err := e.graphForSeeds(ctx, changed, coverage.DefaultLimits.MaxDepth)
	if err != nil {
		return nil, err
	}
	return impact.AnalyzeDiff(ctx, g, changed, coverage.DefaultLimits), nil
}

// SelectTests answers spec §6's select-tests.
func (e *Engine) SelectTests(impacted []impact.TestSelection, level impact.ConfidenceLevel, c impact.Constraints) []impact.TestSelection {
	return impact.SelectTests(impacted, level, c)
}

// TraceExecution performs a forward BFS from root, the supplemented
// operation SPEC_FULL.md §4 adds alongside the reverse coverage queries.
func (e *Engine) TraceExecution(ctx context.Context, root symbol.ID, maxDepth int) (*callgraph.IncrementalResult, error) {
	if maxDepth <= 0 {
		maxDepth = callgraph.DefaultMaxDepth
	}
	return callgraph.BuildIncremental(ctx, e.manager, callgraph.IncrementalOptions{
		Seeds:     []symbol.ID{root},
		MaxDepth:  maxDepth,
		Direction: callgraph.Forward,
	})
}
