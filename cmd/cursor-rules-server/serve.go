package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ololo-tratata/cursor-rules/internal/config"
	"github.com/ololo-tratata/cursor-rules/internal/deploy"
	"github.com/ololo-tratata/cursor-rules/internal/logging"
	"github.com/ololo-tratata/cursor-rules/internal/manager"
	"github.com/ololo-tratata/cursor-rules/internal/repository"
	"github.com/ololo-tratata/cursor-rules/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start the rules HTTP API. Settings come from the config file and environment; --host and --port override the configured listen address.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			if host != "" {
				settings.APIHost = host
			}
			if cmd.Flags().Changed("port") {
				settings.APIPort = port
			}
			return runServe(cmd.Context(), settings)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 8000, "Listen port (overrides config)")

	return cmd
}

func runServe(ctx context.Context, settings config.Settings) error {
	logger := logging.NewAppLogger(settings.LogLevel)
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, settings, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    settings.ListenAddr(),
		Handler: server.NewServer(app.manager, app.deployer, logger).Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr, "repository", app.source.Mode())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// app holds the wired services shared by the HTTP and MCP transports.
type app struct {
	source   *repository.Source
	manager  *manager.RuleManager
	deployer *deploy.Service
}

func buildApp(ctx context.Context, settings config.Settings, logger *logging.AppLogger) (*app, error) {
	source := repository.NewSource(ctx, repository.Options{
		RepoURL:   settings.RepositoryURL(),
		ClonePath: settings.RepoCacheDir,
		Token:     repository.ResolveToken(settings.GitHubToken),
	}, logger)

	mgr, err := manager.NewRuleManager(source, settings.RulesDir, settings.CacheTTL(), logger)
	if err != nil {
		return nil, fmt.Errorf("initializing rule manager: %w", err)
	}

	return &app{
		source:   source,
		manager:  mgr,
		deployer: deploy.NewService(settings.RulesDir, logger),
	}, nil
}
