package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edgewatchlabs/edgewatch/config"
	"github.com/edgewatchlabs/edgewatch/internal/fetcher"
	"github.com/edgewatchlabs/edgewatch/internal/notifier"
	"github.com/edgewatchlabs/edgewatch/internal/state"
	"github.com/edgewatchlabs/edgewatch/internal/watcher"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to optional YAML config file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// best-effort .env load for local runs; absence is not an error
	_ = godotenv.Load()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	if cfg.WebhookURL == "" {
		logger.Warn("SLACK_WEBHOOK_URL is not set, notifications will not be sent")
		logger.Warn("run with: export SLACK_WEBHOOK_URL='https://hooks.slack.com/...'")
	}

	logger.Info("configuration resolved",
		"targets", len(cfg.Targets),
		"endpoint", cfg.ComponentsURL,
		"interval_seconds", cfg.SleepInterval,
		"state_file", cfg.StateFile,
	)

	client := fetcher.NewClient(cfg.ComponentsURL, logger)
	defer client.Close()

	slack := notifier.NewSlack(cfg.WebhookURL, logger)
	store := state.NewFileStore(cfg.StateFile)

	w := watcher.New(
		cfg.Targets,
		time.Duration(cfg.SleepInterval)*time.Second,
		client,
		slack,
		store,
		logger,
	)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watch loop error: %w", err)
	}
	logger.Info("stopped")
	return nil
}
