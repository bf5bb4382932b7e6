package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/output"
)

var diffCmd = &cobra.Command{
	Use:   "diff <solution-path> <changeset.json>",
	Short: "Translate a change set into the affected-method closure and impacted tests with confidences",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cs, err := loadChangeSet(args[1])
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

		g, err := e.BuildCallGraphFull(ctx)
		if err != nil {
			return err
		}

		selections, changed, err := e.AnalyzeDiff(ctx, cs, methodLookupFromGraph(g))
		if err != nil {
			return err
		}
		return render(cfg, output.FromImpactAnalysis(len(changed), selections))
	},
}
