package config

import (
	"os"
	"strconv"

	"adpulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Data       DataConfig
	Confidence ConfidenceConfig
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// server against the in-memory demo fixtures instead of Postgres.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DataConfig holds data source settings
type DataConfig struct {
	SourceFile string // Optional xlsx/csv report to import on boot
	AccountID  string // Account the imported report belongs to
	Currency   string // Display currency code for exports
}

// ConfidenceConfig holds the sample-size gates for High confidence
type ConfidenceConfig struct {
	MinValidatedActions  int // Decision Impact gate
	MinSpendAvoidedCount int // Spend Avoided gate
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: envOrDefault("PORT", "8080"),
		},
		Data: DataConfig{
			SourceFile: os.Getenv("DATA_FILE"),
			AccountID:  envOrDefault("DATA_ACCOUNT", "demo-account"),
			Currency:   envOrDefault("CURRENCY", "AED"),
		},
		Confidence: ConfidenceConfig{
			MinValidatedActions:  envIntOrDefault("CONFIDENCE_MIN_ACTIONS", 30),
			MinSpendAvoidedCount: envIntOrDefault("CONFIDENCE_MIN_SPEND_ACTIONS", 10),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric: " + config.Server.Port)
	}
	if config.Confidence.MinValidatedActions < 0 || config.Confidence.MinSpendAvoidedCount < 0 {
		return errors.ConfigInvalid("confidence gates must be non-negative")
	}
	if len(config.Data.Currency) != 3 {
		return errors.ConfigInvalid("CURRENCY must be a 3-letter code: " + config.Data.Currency)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
