package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <solution-path>",
	Short: "Load a solution, build the call graph, and report an assembly/test-count summary",
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

		summary, err := e.AnalyzeSolution(ctx)
		if err != nil {
			return err
		}
		return render(cfg, output.AnalyzeSolutionResult{
			SolutionPath: args[0],
			Projects:     summary.Projects,
			MethodCount:  summary.MethodCount,
			TestCount:    summary.TestCount,
			Warnings:     summary.Warnings,
		})
	},
}
