package engine

import (
	"context"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/diskcache"
	"github.com/scopeforge/impactscope/internal/store"
	"github.com/scopeforge/impactscope/internal/symbol"
)

// CacheInit creates the cache directory structure for a solution
// without populating it, spec §6's `cache init`.
func (e *Engine) CacheInit() error {
	_, err := diskcache.OpenTiers(e.cacheRoot, e.SolutionPath, len(e.manager.Projects()))
	return err
}

// CacheWarmUp populates the call-graph tier via incremental builds
// seeded from every test method, the supplemented operation
// SPEC_FULL.md §4 names for pre-populating the cache ahead of an
// interactive session.
func (e *Engine) CacheWarmUp(ctx context.Context) (int, error) {
	g, err := e.currentGraph(ctx)
	if err != nil {
		return 0, err
	}
	seeds := make([]symbol.ID, 0)
	for _, key := range g.Nodes() {
		if info, ok := g.Info[key]; ok && info.IsTest {
			seeds = append(seeds, info.ID)
		}
	}

	warmed := 0
	for _, seed := range seeds {
		result, err := callgraph.BuildIncremental(ctx, e.manager, callgraph.IncrementalOptions{
			Seeds:     []symbol.ID{seed},
			MaxDepth:  callgraph.DefaultMaxDepth,
			Direction: callgraph.Forward,
		})
		if err != nil {
			continue
		}
		if err := e.tiers.CallGraph.Put(seed.Key(), result.Graph.Forward, diskcache.AgeCap(len(e.manager.Projects()))); err == nil {
			warmed++
		}
	}
	return warmed, nil
}

// CacheStats reports per-tier statistics for `cache stats`.
func (e *Engine) CacheStats() map[string]diskcache.Stats {
	return map[string]diskcache.Stats{
		"compilations": e.tiers.Compilations.StatsSnapshot(),
		"call-graph":   e.tiers.CallGraph.StatsSnapshot(),
		"projects":     e.tiers.Projects.StatsSnapshot(),
	}
}

// CacheStatus reports per-tier statistics plus the last recorded
// analysis run, for `cache status`.
func (e *Engine) CacheStatus() (map[string]diskcache.Stats, bool, store.Run) {
	stats := e.CacheStats()
	run, ok := e.hist.LastRun(store.SolutionHash(e.SolutionPath))
	if !ok {
		return stats, false, store.Run{}
	}
	return stats, true, run
}

// CacheClear removes every entry from every tier plus the durable
// history store, for `cache clear`.
func (e *Engine) CacheClear() error {
	for _, c := range []*diskcache.Cache{e.tiers.Compilations, e.tiers.CallGraph, e.tiers.Projects} {
		if err := c.Clear(); err != nil {
			return err
		}
	}
	return e.hist.Clear()
}
