package config

import (
	"testing"

	"gotrial/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DATABASE_URL", "DB_DRIVER", "PORT", "LOG_LEVEL", "METRICS_ENABLED",
	"METRICS_PATH", "BATCH_CONCURRENCY", "SEED_MODE", "FIXED_SEED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 4, cfg.Randomization.BatchConcurrency)
	assert.Equal(t, SeedModeClock, cfg.Randomization.SeedMode)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "file:trial.db")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("PORT", "9090")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("SEED_MODE", "fixed")
	t.Setenv("FIXED_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8, cfg.Randomization.BatchConcurrency)
	assert.Equal(t, SeedModeFixed, cfg.Randomization.SeedMode)
	assert.Equal(t, int64(42), cfg.Randomization.FixedSeed)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_URL": "x", "DB_DRIVER": "mysql"}},
		{"zero concurrency", map[string]string{"BATCH_CONCURRENCY": "0"}},
		{"unknown seed mode", map[string]string{"SEED_MODE": "random"}},
		{"fixed without seed", map[string]string{"SEED_MODE": "fixed"}},
		{"fixed with bad seed", map[string]string{"SEED_MODE": "fixed", "FIXED_SEED": "abc"}},
		{"relative metrics path", map[string]string{"METRICS_PATH": "metrics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
