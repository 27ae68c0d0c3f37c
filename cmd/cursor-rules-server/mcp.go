package main

import (
	"github.com/spf13/cobra"

	"github.com/ololo-tratata/cursor-rules/internal/config"
	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server (stdio)",
		Long:  "Start the Model Context Protocol server on stdio. AI coding assistants connect to it to fetch and deploy rules without a running HTTP server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}

			// stdout carries the JSON-RPC stream, so logs must stay on stderr.
			logger := logging.NewAppLogger(settings.LogLevel)
			logging.SetDefault(logger)

			app, err := buildApp(cmd.Context(), settings, logger)
			if err != nil {
				return err
			}

			s := mcp.NewMCPServer(app.manager, app.deployer, logger)
			logger.Info("MCP server starting on stdio", "repository", app.source.Mode())
			return mcp.ServeStdio(s)
		},
	}
}
