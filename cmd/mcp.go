package cmd

import (
	"github.com/ltin1214/dcurves/internal/mcp"
	"github.com/ltin1214/dcurves/internal/runstore"
	"github.com/spf13/cobra"
)

// mcpCmd starts the MCP server over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the decision curve analysis MCP server",
	Long: `Start a Model Context Protocol server over stdio.

The server exposes dca_binary, dca_survival and dca_case_control tools so
agents can run threshold sweeps against local CSV files and receive the
frozen result rows as JSON.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// The server validates per-call inputs itself; only the history
		// backend needs to be ready before serving.
		return historySetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, runstore.Manager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
