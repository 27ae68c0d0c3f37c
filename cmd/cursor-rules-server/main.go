// Package main is the entry point for the cursor-rules server.
//
// The server exposes rules over two transports: an HTTP API (the `serve`
// command) and an MCP stdio server (the `mcp` command). Both share the same
// startup sequence:
//
// 1. Load settings from the config file and environment
// 2. Initialize logging at the configured level
// 3. Open the rule repository (degrading to built-in mocks on failure)
// 4. Build the rule manager and deployment service
// 5. Serve until interrupted
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cursor-rules-server",
		Short:         "Serve Cursor rules over HTTP and MCP",
		Long:          "cursor-rules-server fetches rule definitions from a GitHub repository, caches them locally, and serves them to editors and AI assistants over an HTTP API or the Model Context Protocol.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}
