package config

import (
	"os"
	"time"

	"cropwise/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Backend  BackendConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// BackendConfig holds settings for the farm-management backend collaborator
type BackendConfig struct {
	BaseURL string `validate:"required"`
	Token   string
	Timeout time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string `validate:"required"`
}

// DatabaseConfig holds optional activity-log database settings. When URL is
// empty, the in-memory activity repository is used instead.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Backend:  loadBackendConfig(),
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadBackendConfig() BackendConfig {
	return BackendConfig{
		BaseURL: getEnvOrDefault("BACKEND_URL", ""),
		Token:   getEnvOrDefault("BACKEND_TOKEN", ""),
		Timeout: getEnvDurationOrDefault("BACKEND_TIMEOUT", 30*time.Second),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Backend.BaseURL == "" {
		return errors.ConfigInvalid("BACKEND_URL is required")
	}
	if config.Backend.Timeout <= 0 {
		return errors.ConfigInvalid("BACKEND_TIMEOUT must be positive")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
