package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinBurst(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, RequestsPerSecond: 1, Burst: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d within burst", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")
}

func TestClientsAreIndependent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, RequestsPerSecond: 1, Burst: 1})
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "a second client has its own bucket")
}

func TestDisabledAlwaysAllows(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
}

func TestEvictIdleDropsStaleClients(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Millisecond})
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	time.Sleep(5 * time.Millisecond)
	l.evictIdle()

	l.mu.Lock()
	_, exists := l.clients["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, exists)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, float64(10), cfg.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, time.Hour, cfg.IdleTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_IDLE_TTL", "10m")

	cfg := LoadConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, 5, cfg.Burst)
	assert.Equal(t, 30*time.Second, cfg.CleanupInterval)
	assert.Equal(t, 10*time.Minute, cfg.IdleTTL)
}
