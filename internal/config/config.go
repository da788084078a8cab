// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Telemetry exporter choices.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL      string
	LogLevel         string
	LogJSON          bool
	OTelExporter     string
	OTelEndpoint     string
	ExchangeCacheTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogJSON:      os.Getenv("LOG_JSON") == "true",
		OTelExporter: os.Getenv("OTEL_EXPORTER"),
		OTelEndpoint: os.Getenv("OTEL_ENDPOINT"),
	}

	if cfg.OTelExporter == "" {
		cfg.OTelExporter = ExporterNone
	}

	cfg.ExchangeCacheTTL = 12 * time.Hour
	if ttlStr := os.Getenv("EXCHANGE_CACHE_TTL"); ttlStr != "" {
		if ttl, err := time.ParseDuration(ttlStr); err == nil && ttl > 0 {
			cfg.ExchangeCacheTTL = ttl
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	switch c.OTelExporter {
	case ExporterNone, ExporterStdout, ExporterOTLP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER must be one of none, stdout, otlp (got %q)", c.OTelExporter))
	}

	if c.OTelExporter == ExporterOTLP && c.OTelEndpoint == "" {
		errs = append(errs, "OTEL_ENDPOINT is required when OTEL_EXPORTER is otlp")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
