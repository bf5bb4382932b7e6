package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/engine"
	"github.com/scopeforge/impactscope/internal/impact"
	"github.com/scopeforge/impactscope/internal/output"
)

var (
	selectLevel    string
	selectMaxCount int
)

var selectCmd = &cobra.Command{
	Use:   "select <solution-path> <changeset.json>",
	Short: "Produce a test execution plan for a change set at a confidence level (Fast|Medium|High|Full)",
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
		level := impact.ConfidenceLevel(selectLevel)
		if level == "" {
			level = impact.Medium
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
		selections, _, err := e.AnalyzeDiff(ctx, cs, methodLookupFromGraph(g))
		if err != nil {
			return err
		}

		constraints := impact.Constraints{MaxCount: selectMaxCount}
		selected := e.SelectTests(selections, level, constraints)
		return render(cfg, output.FromTestSelectionResult(level, selected))
	},
}

func init() {
	selectCmd.Flags().StringVar(&selectLevel, "level", "", "confidence level: Fast | Medium | High | Full (default: Medium)")
	selectCmd.Flags().IntVar(&selectMaxCount, "max-count", 0, "maximum number of tests to select (0 = unbounded)")
}
