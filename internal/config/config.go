package config

import (
	"os"
	"strconv"
	"strings"

	"gotrial/internal/errors"
)

// Seed modes for allocations that do not pin a seed
const (
	SeedModeClock = "clock"
	SeedModeFixed = "fixed"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Database      DatabaseConfig
	Server        ServerConfig
	Metrics       MetricsConfig
	Randomization RandomizationConfig
	LogLevel      string
}

// DatabaseConfig holds database connection settings.
// An empty URL selects the in-memory stores.
type DatabaseConfig struct {
	URL    string
	Driver string
}

// Enabled reports whether a persistent store is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// MetricsConfig holds prometheus exposition settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// RandomizationConfig holds engine defaults
type RandomizationConfig struct {
	BatchConcurrency int
	SeedMode         string
	FixedSeed        int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:      *loadDatabaseConfig(),
		Server:        *loadServerConfig(),
		Metrics:       *loadMetricsConfig(),
		Randomization: *loadRandomizationConfig(),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:    os.Getenv("DATABASE_URL"),
		Driver: strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverPostgres)),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
		Path:    getEnvOrDefault("METRICS_PATH", "/metrics"),
	}
}

func loadRandomizationConfig() *RandomizationConfig {
	return &RandomizationConfig{
		BatchConcurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
		SeedMode:         strings.ToLower(getEnvOrDefault("SEED_MODE", SeedModeClock)),
		FixedSeed:        getEnvInt64OrDefault("FIXED_SEED", 0),
	}
}

func validateConfig(config *Config) error {
	if config.Database.Enabled() {
		switch config.Database.Driver {
		case DriverPostgres, DriverSQLite:
		default:
			return errors.ConfigInvalid("DB_DRIVER must be postgres or sqlite, got " + config.Database.Driver)
		}
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return errors.ConfigInvalid("METRICS_PATH must start with /")
	}
	if config.Randomization.BatchConcurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	switch config.Randomization.SeedMode {
	case SeedModeClock:
	case SeedModeFixed:
		value := os.Getenv("FIXED_SEED")
		if value == "" {
			return errors.ConfigInvalid("FIXED_SEED is required when SEED_MODE=fixed")
		}
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return errors.ConfigInvalid("FIXED_SEED must be an integer, got " + value)
		}
	default:
		return errors.ConfigInvalid("SEED_MODE must be clock or fixed, got " + config.Randomization.SeedMode)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
