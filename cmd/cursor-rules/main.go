// Package main is the command line client for the cursor-rules server.
//
// It talks to the HTTP API and offers the operations a developer needs from a
// shell: deploying rules into a project, resolving the rules for a file, and
// listing the technologies the server knows about.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8000"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:           "cursor-rules",
		Short:         "Client for the cursor-rules server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "Rules server URL")

	cmd.AddCommand(newDeployCmd(&serverURL))
	cmd.AddCommand(newGetRulesCmd(&serverURL))
	cmd.AddCommand(newListTechnologiesCmd(&serverURL))
	return cmd
}
