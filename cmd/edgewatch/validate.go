package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/edgewatchlabs/edgewatch/config"
)

// validateCmd resolves and prints the configuration without starting
// the watch loop.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Resolve and check the configuration",
	Long: `Resolve the edgewatch configuration from the environment (and the
optional config file) and print the effective settings without starting
the watch loop. Useful before deploying a unit file or container.

Exit codes:
  0 - Configuration is valid
  1 - Configuration is invalid (error details printed to stderr)

Example:
  TARGET_LOCATIONS=tokyo edgewatch validate
  edgewatch validate -c /etc/edgewatch/edgewatch.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	webhook := "(none - notifications disabled)"
	if cfg.WebhookURL != "" {
		webhook = "configured"
	}

	fmt.Printf("Configuration is valid!\n")
	fmt.Printf("  Targets:     %s\n", strings.Join(cfg.Targets, ", "))
	fmt.Printf("  Endpoint:    %s\n", cfg.ComponentsURL)
	fmt.Printf("  Interval:    %ds\n", cfg.SleepInterval)
	fmt.Printf("  State file:  %s\n", cfg.StateFile)
	fmt.Printf("  Webhook:     %s\n", webhook)
	fmt.Printf("  Log level:   %s\n", cfg.LogLevel.String())

	return nil
}
