// Package main is the entry point for the edgewatch daemon.
//
// edgewatch polls a status-page components endpoint, detects status
// changes for a configured set of locations, and posts them to a Slack
// webhook. Behavior is entirely environment-driven; running the binary
// with no arguments starts the watch loop.
//
// Usage:
//
//	edgewatch                       # start watching (env-configured)
//	edgewatch -c edgewatch.yaml     # start with an optional config file
//	edgewatch validate              # print the resolved configuration
//	edgewatch version               # show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd starts the watch loop. Configuration comes from the
// environment (and an optional YAML file), never from required flags.
var rootCmd = &cobra.Command{
	Use:   "edgewatch",
	Short: "Watch a status page and alert on component changes",
	Long: `edgewatch is a small daemon that polls a public status-page components
endpoint (Cloudflare Status by default), matches a configured list of
location names against the component feed, and posts a Slack webhook
message whenever a matched component's status changes. Last-seen
statuses are persisted to a JSON file so restarts do not re-alert.

Configuration is environment-driven:

  export TARGET_LOCATIONS='jakarta,singapore'
  export SLACK_WEBHOOK_URL='https://hooks.slack.com/services/...'
  edgewatch

The daemon runs until interrupted (Ctrl+C) or receives SIGTERM.`,
	RunE:          runWatch,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this edgewatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgewatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
