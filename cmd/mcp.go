package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeflow/tempod/internal/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the Model Context Protocol server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.ErrOrStderr(), "starting MCP server on stdio")
		server := mcp.NewServer(co)
		if err := server.Start(setupSignalHandler()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
