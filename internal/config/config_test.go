package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, PipelineConfig{
		Workers: 1,
		Source:  "../DowJones.csv",
		Where:   DefaultWhere,
		Table:   "trade_days",
	}, cfg.Pipeline)
	assert.Equal(t, LogConfig{Level: "warn"}, cfg.Logging)
	assert.Empty(t, cfg.History.Path)
	assert.Empty(t, cfg.Metrics.File)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("TRADESCAN_WORKERS", "8")
	t.Setenv("TRADESCAN_SOURCE", "prices.csv.gz")
	t.Setenv("TRADESCAN_TIMEOUT", "90s")
	t.Setenv("TRADESCAN_DRAIN", "true")
	t.Setenv("TRADESCAN_LOG_LEVEL", "debug")
	t.Setenv("TRADESCAN_HISTORY", "runs.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, "prices.csv.gz", cfg.Pipeline.Source)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.Timeout)
	assert.True(t, cfg.Pipeline.Drain)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "runs.db", cfg.History.Path)

	// untouched values keep their defaults
	assert.Equal(t, DefaultWhere, cfg.Pipeline.Where)
	assert.Equal(t, "trade_days", cfg.Pipeline.Table)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRADESCAN_TABLE=market.days\nTRADESCAN_WHERE=close > open\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("TRADESCAN_TABLE")
		os.Unsetenv("TRADESCAN_WHERE")
	})
	t.Setenv("TRADESCAN_METRICS_FILE", "scan.prom")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "market.days", cfg.Pipeline.Table)
	assert.Equal(t, "close > open", cfg.Pipeline.Where)
	assert.Equal(t, "scan.prom", cfg.Metrics.File)
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero workers", key: "TRADESCAN_WORKERS", value: "0"},
		{name: "non numeric workers", key: "TRADESCAN_WORKERS", value: "many"},
		{name: "negative timeout", key: "TRADESCAN_TIMEOUT", value: "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
