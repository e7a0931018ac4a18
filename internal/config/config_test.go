package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/outreach")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_RATE_LIMIT_RETRIES", "")
	t.Setenv("OPENAI_RATE_LIMIT_BACKOFF", "")
	t.Setenv("OPENAI_REQUEST_TIMEOUT", "")
	t.Setenv("INGEST_USE_BROWSER", "")

	cfg := Load()
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultBaseBackoff, cfg.BaseBackoff)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.False(t, cfg.UseBrowser)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/outreach")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_RATE_LIMIT_RETRIES", "5")
	t.Setenv("OPENAI_RATE_LIMIT_BACKOFF", "2s")
	t.Setenv("OPENAI_REQUEST_TIMEOUT", "90s")
	t.Setenv("INGEST_USE_BROWSER", "true")

	cfg := Load()
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.BaseBackoff)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.UseBrowser)
}

func TestLoadClampsPathologicalValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/outreach")
	t.Setenv("OPENAI_RATE_LIMIT_RETRIES", "-2")
	t.Setenv("OPENAI_RATE_LIMIT_BACKOFF", "1ms")

	cfg := Load()
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.BaseBackoff)
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
