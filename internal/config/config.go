package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultWhere counts sessions that closed more than 5% above the open.
const DefaultWhere = "open != 0 && (close - open) / open > 0.05"

// Config holds all application configuration.
type Config struct {
	Pipeline PipelineConfig
	Logging  LogConfig
	History  HistoryConfig
	Metrics  MetricsConfig
}

// PipelineConfig holds what a scan reads and how.
type PipelineConfig struct {
	Workers int           `envconfig:"TRADESCAN_WORKERS" default:"1"`
	Source  string        `envconfig:"TRADESCAN_SOURCE" default:"../DowJones.csv"`
	Where   string        `envconfig:"TRADESCAN_WHERE" default:"open != 0 && (close - open) / open > 0.05"`
	Screens string        `envconfig:"TRADESCAN_SCREENS"`
	Table   string        `envconfig:"TRADESCAN_TABLE" default:"trade_days"`
	Timeout time.Duration `envconfig:"TRADESCAN_TIMEOUT" default:"0s"`
	Drain   bool          `envconfig:"TRADESCAN_DRAIN" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"TRADESCAN_LOG_LEVEL" default:"warn"`
	Development bool   `envconfig:"TRADESCAN_LOG_DEV" default:"false"`
}

// HistoryConfig points at the bbolt file of past runs; empty disables it.
type HistoryConfig struct {
	Path string `envconfig:"TRADESCAN_HISTORY"`
}

// MetricsConfig names the prometheus text file written after a scan.
type MetricsConfig struct {
	File string `envconfig:"TRADESCAN_METRICS_FILE"`
}

// Load reads envFile when it exists, then the environment. Variables that
// are already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("TRADESCAN_WORKERS must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.Timeout < 0 {
		return fmt.Errorf("TRADESCAN_TIMEOUT must not be negative, got %s", c.Pipeline.Timeout)
	}
	return nil
}
