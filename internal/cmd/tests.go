package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
	"github.com/scopeforge/impactscope/internal/symbol"
)

var testsCmd = &cobra.Command{
	Use:   "tests <solution-path> <method-id>",
	Short: "Find the tests that reach a production method, ranked by confidence",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		target, err := symbol.ParseKey(args[1])
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

		result, err := e.FindTestsForMethod(ctx, target)
		if err != nil {
			return err
		}
		return render(cfg, output.FromCoverageResult(result))
	},
}
