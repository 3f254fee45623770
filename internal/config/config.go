// Package config provides environment-driven configuration for the climate
// ETL service.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Logging     LoggingConfig     `envPrefix:"LOG_"`
	Extract     ExtractConfig     `envPrefix:"EXTRACT_"`
	EarthEngine EarthEngineConfig `envPrefix:"GEE_"`
	OpenMeteo   OpenMeteoConfig   `envPrefix:"OPENMETEO_"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// ExtractConfig bounds the extraction engine.
type ExtractConfig struct {
	ChunkSize      int           `env:"CHUNK_SIZE" envDefault:"1000"`
	Workers        int           `env:"WORKERS" envDefault:"6"`
	AttemptTimeout time.Duration `env:"ATTEMPT_TIMEOUT" envDefault:"60s"`
	MaxRetries     uint64        `env:"MAX_RETRIES" envDefault:"2"`
}

// EarthEngineConfig locates the gridded-raster sampling service and its
// service-account credentials. One of the key settings must be present for
// the extract operation to be served.
type EarthEngineConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://earthengine.googleapis.com"`
	KeyPath string        `env:"SERVICE_ACCOUNT_JSON_PATH"`
	KeyJSON string        `env:"SERVICE_ACCOUNT_JSON"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"90s"`
}

// HasCredentials reports whether any service-account key is configured.
func (c EarthEngineConfig) HasCredentials() bool {
	return c.KeyPath != "" || c.KeyJSON != ""
}

// OpenMeteoConfig locates the point-forecast API and sets the default
// download window.
type OpenMeteoConfig struct {
	BaseURL      string        `env:"BASE_URL" envDefault:"https://api.open-meteo.com/v1/forecast"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
	Timezone     string        `env:"TIMEZONE" envDefault:"America/Sao_Paulo"`
	PastDays     int           `env:"PAST_DAYS" envDefault:"5"`
	ForecastDays int           `env:"FORECAST_DAYS" envDefault:"3"`
}

// Load parses configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Extract.ChunkSize <= 0 {
		return nil, errors.New("EXTRACT_CHUNK_SIZE must be positive")
	}
	if cfg.Extract.Workers <= 0 {
		return nil, errors.New("EXTRACT_WORKERS must be positive")
	}
	if cfg.Extract.AttemptTimeout <= 0 {
		return nil, errors.New("EXTRACT_ATTEMPT_TIMEOUT must be positive")
	}
	if cfg.OpenMeteo.PastDays < 0 || cfg.OpenMeteo.ForecastDays < 0 {
		return nil, errors.New("OPENMETEO_PAST_DAYS and OPENMETEO_FORECAST_DAYS must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}

	return cfg, nil
}
