package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage <solution-path>",
	Short: "Build the bulk reverse coverage map: every reachable production method to its covering tests",
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

		m, err := e.BuildCoverageMap(ctx)
		if err != nil {
			return err
		}
		return render(cfg, output.FromCoverageMap(m))
	},
}
