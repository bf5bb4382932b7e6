package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
	"github.com/scopeforge/impactscope/internal/symbol"
)

var (
	graphIncludeEdges bool
	graphSeed         string
	graphMaxDepth     int
	graphReverse      bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <solution-path>",
	Short: "Build the call graph: full solution by default, or a focused incremental subgraph from --seed",
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

		if graphSeed == "" {
			g, err := e.BuildCallGraphFull(ctx)
			if err != nil {
				return err
			}
			return render(cfg, output.FromGraph(g, "full", graphIncludeEdges))
		}

		seed, err := symbol.ParseKey(graphSeed)
		if err != nil {
			return err
		}
		dir := callgraph.Forward
		if graphReverse {
			dir = callgraph.Reverse
		}
		result, err := e.BuildCallGraphIncremental(ctx, []symbol.ID{seed}, graphMaxDepth, dir)
		if err != nil {
			return err
		}
		return render(cfg, output.FromGraph(result.Graph, "incremental", graphIncludeEdges))
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphIncludeEdges, "edges", false, "include the full adjacency list in the result")
	graphCmd.Flags().StringVar(&graphSeed, "seed", "", "seed method id for an incremental (focused) subgraph")
	graphCmd.Flags().IntVar(&graphMaxDepth, "max-depth", 0, "BFS depth bound for --seed (default: engine default)")
	graphCmd.Flags().BoolVar(&graphReverse, "reverse", false, "expand the reverse (caller) direction instead of forward")
}
