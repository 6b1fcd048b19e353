/*
Package config loads server configuration.

PURPOSE:
  One place for everything tunable: HTTP port, database path, the admin
  token gating real settlement runs, logging, and the automatic
  settlement job. Values come from an optional YAML file plus
  SETTLEMENT_* environment overrides, with sane defaults for local dev.

USAGE:
  cfg, err := config.Load("")          // defaults + env
  cfg, err := config.Load("conf.yaml") // explicit file
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`

	// AdminToken gates non-dry-run remittance generation. Empty means
	// the gate is open (local development).
	AdminToken string `mapstructure:"admin_token"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file; ":memory:" for ephemeral.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`

	// File enables rotating file output when set; empty logs to stderr.
	File string `mapstructure:"file"`
}

type SchedulerConfig struct {
	// Enabled turns on the automatic settlement job. Off by default:
	// most deployments trigger runs through the API.
	Enabled bool `mapstructure:"enabled"`

	// Cron is the job schedule. Default: 02:00 UTC on the 1st of each
	// month.
	Cron string `mapstructure:"cron"`

	// DryRun makes the scheduled job preview-only.
	DryRun bool `mapstructure:"dry_run"`
}

// Load reads configuration from the given file (optional), environment
// variables prefixed SETTLEMENT_, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("database.path", "settlement.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron", "0 2 1 * *")
	v.SetDefault("scheduler.dry_run", false)

	v.SetEnvPrefix("SETTLEMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
