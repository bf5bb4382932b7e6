package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/scopeforge/impactscope/internal/mcp"
)

var mcpTimeout time.Duration

var mcpCmd = &cobra.Command{
	Use:   "mcp <solution-path>",
	Short: "Serve the engine API as MCP tools over stdio, for an agent to query test impact directly",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ctx, cancel := baseContext()
		defer cancel()

		srv, err := mcp.New(ctx, mcp.Config{SolutionPath: args[0], Timeout: mcpTimeout})
		if err != nil {
			return err
		}
		defer srv.Close()
		return srv.ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().DurationVar(&mcpTimeout, "idle-timeout", 0, "shut down after this long with no tool activity (0 = never)")
}
