// Package config resolves the edgewatch configuration.
//
// Configuration is environment-first: every setting has a default and an
// environment variable override, so the daemon runs with no arguments at
// all. An optional YAML file can sit beneath the environment for
// deployments that prefer files; precedence is defaults, then file, then
// environment.
//
// Environment variables:
//
//	TARGET_LOCATIONS   comma-separated location names (default "jakarta,singapore")
//	SLACK_WEBHOOK_URL  Slack incoming webhook (optional; must be https:// when set)
//	COMPONENTS_URL     status-page components endpoint
//	SLEEP_INTERVAL     poll interval in seconds (default 60)
//	STATE_FILE         path of the persisted state file
//	LOG_LEVEL          DEBUG, INFO, WARN or ERROR (default INFO)
//	EDGEWATCH_CONFIG   path of the optional YAML config file
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edgewatchlabs/edgewatch/internal/notifier"
)

// Defaults applied when neither the environment nor a config file
// provides a value.
const (
	DefaultTargets       = "jakarta,singapore"
	DefaultComponentsURL = "https://www.cloudflarestatus.com/api/v2/components.json"
	DefaultSleepInterval = 60
	DefaultStateFile     = "/var/lib/edgewatch/state.json"
)

// Config is the immutable configuration snapshot used by every other
// component. Build one with [Load]; do not mutate it afterwards.
type Config struct {
	// Targets are the lowercased location names to monitor, in the order
	// they were configured.
	Targets []string

	// WebhookURL is the Slack incoming webhook. Empty means notifications
	// are skipped with a warning.
	WebhookURL string

	// ComponentsURL is the status-page components endpoint to poll.
	ComponentsURL string

	// SleepInterval is the number of seconds between poll cycles.
	SleepInterval int

	// StateFile is the path of the persisted last-status mapping.
	StateFile string

	// LogLevel is the minimum level emitted by the logger.
	LogLevel slog.Level
}

// fileConfig is the YAML shape of the optional config file.
type fileConfig struct {
	TargetLocations []string `yaml:"target_locations"`
	WebhookURL      string   `yaml:"webhook_url"`
	ComponentsURL   string   `yaml:"components_url"`
	SleepInterval   *int     `yaml:"sleep_interval"`
	StateFile       string   `yaml:"state_file"`
	LogLevel        string   `yaml:"log_level"`
}

// Load resolves the configuration from defaults, the optional YAML file,
// and the environment, in that order of precedence.
//
// path may be empty; the EDGEWATCH_CONFIG environment variable is then
// consulted, and if that is also unset no file is read at all. Load
// fails on an unreadable or unparseable config file, a non-positive or
// non-integer SLEEP_INTERVAL, an unknown LOG_LEVEL, or a webhook URL
// that does not start with https://.
func Load(path string) (*Config, error) {
	targets := DefaultTargets
	cfg := &Config{
		ComponentsURL: DefaultComponentsURL,
		SleepInterval: DefaultSleepInterval,
		StateFile:     DefaultStateFile,
		LogLevel:      slog.LevelInfo,
	}

	if path == "" {
		path = os.Getenv("EDGEWATCH_CONFIG")
	}
	levelName := ""
	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if len(fc.TargetLocations) > 0 {
			targets = strings.Join(fc.TargetLocations, ",")
		}
		if fc.WebhookURL != "" {
			cfg.WebhookURL = fc.WebhookURL
		}
		if fc.ComponentsURL != "" {
			cfg.ComponentsURL = fc.ComponentsURL
		}
		if fc.SleepInterval != nil {
			cfg.SleepInterval = *fc.SleepInterval
		}
		if fc.StateFile != "" {
			cfg.StateFile = fc.StateFile
		}
		levelName = fc.LogLevel
	}

	if v, ok := os.LookupEnv("TARGET_LOCATIONS"); ok {
		targets = v
	}
	if v, ok := os.LookupEnv("SLACK_WEBHOOK_URL"); ok {
		cfg.WebhookURL = v
	}
	if v, ok := os.LookupEnv("COMPONENTS_URL"); ok {
		cfg.ComponentsURL = v
	}
	if v, ok := os.LookupEnv("SLEEP_INTERVAL"); ok {
		seconds, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("SLEEP_INTERVAL must be an integer number of seconds, got %q", v)
		}
		cfg.SleepInterval = seconds
	}
	if v, ok := os.LookupEnv("STATE_FILE"); ok {
		cfg.StateFile = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		levelName = v
	}

	cfg.Targets = splitTargets(targets)

	if levelName != "" {
		level, err := parseLevel(levelName)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile reads and parses the YAML config file.
func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// splitTargets normalizes a comma-separated target list: entries are
// trimmed and lowercased, empties dropped, order preserved.
func splitTargets(s string) []string {
	parts := strings.Split(s, ",")
	targets := make([]string, 0, len(parts))
	for _, part := range parts {
		target := strings.ToLower(strings.TrimSpace(part))
		if target != "" {
			targets = append(targets, target)
		}
	}
	return targets
}

// parseLevel maps a level name to a slog.Level.
func parseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (expected DEBUG, INFO, WARN or ERROR)", name)
	}
}

// validate enforces the startup invariants.
func (c *Config) validate() error {
	if c.SleepInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", c.SleepInterval)
	}
	if c.ComponentsURL == "" {
		return fmt.Errorf("components URL must not be empty")
	}
	if c.WebhookURL != "" && !strings.HasPrefix(c.WebhookURL, notifier.RequiredWebhookPrefix) {
		return fmt.Errorf("webhook URL must start with %s, got %q",
			notifier.RequiredWebhookPrefix, c.WebhookURL)
	}
	return nil
}
