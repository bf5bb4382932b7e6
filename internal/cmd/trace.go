package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/callgraph"
	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
	"github.com/scopeforge/impactscope/internal/symbol"
)

var traceMaxDepth int

var traceCmd = &cobra.Command{
	Use:   "trace <solution-path> <test-method-id>",
	Short: "Trace a test method's forward call tree, the supplemented execution-trace operation",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := symbol.ParseKey(args[1])
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

		maxDepth := traceMaxDepth
		result, err := e.TraceExecution(ctx, root, maxDepth)
		if err != nil {
			return err
		}
		if maxDepth <= 0 {
			maxDepth = callgraph.DefaultMaxDepth
		}

		reached := make([]string, 0, len(result.Graph.Info))
		maxDepthHit := false
		for _, key := range result.Graph.Nodes() {
			if key == root.Key() {
				continue
			}
			reached = append(reached, key)
			if result.Depths[key] >= maxDepth {
				maxDepthHit = true
			}
		}
		return render(cfg, output.TraceExecutionResult{
			RootMethodID:   root.Key(),
			ReachedMethods: reached,
			MaxDepthHit:    maxDepthHit,
		})
	},
}

func init() {
	traceCmd.Flags().IntVar(&traceMaxDepth, "max-depth", 0, "BFS depth bound (default: engine default)")
}
