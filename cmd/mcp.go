package cmd

import (
	"github.com/huangsam/lakerisk/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the lakerisk MCP server",
	Long:  `Launch an MCP server over stdio that allows AI agents to score lakes, inspect reference data and rank species via standard tools.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		// Tool handlers suppress run headers so stdio stays reserved for the protocol
		return sharedSetup(rootCtx, cmd, nil)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, engine)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
