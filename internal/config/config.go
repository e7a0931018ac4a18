// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultModel          = "gpt-4o-mini"
	DefaultBaseURL        = "https://api.openai.com/v1/responses"
	DefaultMaxRetries     = 2
	DefaultBaseBackoff    = 500 * time.Millisecond
	DefaultRequestTimeout = 60 * time.Second
)

// Config holds process-wide configuration, built once at startup and passed
// by reference into each constructor. No ambient global state.
type Config struct {
	DatabaseURL string

	// Remote language-model endpoint settings.
	APIKey         string
	Model          string
	BaseURL        string
	MaxRetries     int
	BaseBackoff    time.Duration
	RequestTimeout time.Duration

	// Ingestion behavior.
	UseBrowser bool
}

// Load builds a Config from environment variables. Missing optional values
// use defaults; required values are checked by Validate.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		Model:          envOr("OPENAI_MODEL", DefaultModel),
		BaseURL:        envOr("OPENAI_BASE_URL", DefaultBaseURL),
		MaxRetries:     envInt("OPENAI_RATE_LIMIT_RETRIES", DefaultMaxRetries),
		BaseBackoff:    envDuration("OPENAI_RATE_LIMIT_BACKOFF", DefaultBaseBackoff),
		RequestTimeout: envDuration("OPENAI_REQUEST_TIMEOUT", DefaultRequestTimeout),
		UseBrowser:     envBool("INGEST_USE_BROWSER"),
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff < 100*time.Millisecond {
		cfg.BaseBackoff = 100 * time.Millisecond
	}

	return cfg
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("config error: OPENAI_MODEL must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config error: OPENAI_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
