package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/diskcache"
	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache Layer operations: init | warm-up | status | stats | clear (spec §6)",
}

var cacheInitCmd = &cobra.Command{
	Use:   "init <solution-path>",
	Short: "Create the cache directory structure for a solution without populating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := baseContext()
		defer cancel()
		e, err := engine.Open(ctx, args[0], cfg)
		if err != nil {
			return err
		}
		defer e.Close()
		return e.CacheInit()
	},
}

var cacheWarmUpCmd = &cobra.Command{
	Use:   "warm-up <solution-path>",
	Short: "Populate the call-graph cache tier ahead of an interactive session, seeded from every test method",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := baseContext()
		defer cancel()
		e, err := engine.Open(ctx, args[0], cfg)
		if err != nil {
			return err
		}
		defer e.Close()
		warmed, err := e.CacheWarmUp(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("warmed %d test-seeded subgraphs\n", warmed)
		return nil
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status <solution-path>",
	Short: "Report per-tier cache statistics plus the last recorded analysis run",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := baseContext()
		defer cancel()
		e, err := engine.Open(ctx, args[0], cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, hasRun, run := e.CacheStatus()
		result := output.CacheStatus{Tiers: tiersToWire(stats)}
		if hasRun {
			result.LastRunID = run.RunID
			result.LastRunTime = run.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		return render(cfg, result)
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats <solution-path>",
	Short: "Report per-tier cache statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := baseContext()
		defer cancel()
		e, err := engine.Open(ctx, args[0], cfg)
		if err != nil {
			return err
		}
		defer e.Close()
		return render(cfg, tiersToWire(e.CacheStats()))
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <solution-path>",
	Short: "Remove every entry from every cache tier plus the durable history store",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := baseContext()
		defer cancel()
		e, err := engine.Open(ctx, args[0], cfg)
		if err != nil {
			return err
		}
		defer e.Close()
		return e.CacheClear()
	},
}

// tiersToWire renders the three named tiers (spec §4.9) in a
// deterministic order.
func tiersToWire(stats map[string]diskcache.Stats) []output.CacheStats {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]output.CacheStats, 0, len(names))
	for _, name := range names {
		s := stats[name]
		out = append(out, output.CacheStats{
			Tier:          name,
			EntryCount:    int(s.TotalEntries),
			TotalBytes:    s.TotalCompressed,
			HitCount:      s.HitCount,
			MissCount:     s.MissCount,
			EvictionCount: s.EvictionCount,
		})
	}
	return out
}

func init() {
	cacheCmd.AddCommand(cacheInitCmd, cacheWarmUpCmd, cacheStatusCmd, cacheStatsCmd, cacheClearCmd)
}
