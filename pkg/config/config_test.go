package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	// An empty value falls back to the default for the typed helpers.
	for _, key := range []string{"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "GLOBAL_COOLDOWN", "DUPLICATE_WINDOW", "MAX_LAUNCHES", "ADMIN_EMAILS", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	assert.Equal(t, 2, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.GlobalCooldown)
	assert.Equal(t, time.Hour, cfg.DuplicateWindow)
	assert.Equal(t, 1000, cfg.MaxLaunches)
	assert.Empty(t, cfg.AllowedEmails)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "launches.json")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("GLOBAL_COOLDOWN", "3")
	t.Setenv("MAX_LAUNCHES", "not-a-number")
	t.Setenv("ADMIN_EMAILS", "a@example.com, b@example.com,,")
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "launches.json", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 3*time.Second, cfg.GlobalCooldown)
	assert.Equal(t, 1000, cfg.MaxLaunches)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.AllowedEmails)
	assert.True(t, cfg.TrustProxy)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_PruneIntervalMustBePositive(t *testing.T) {
	for _, v := range []string{"0", "-5s", "0s"} {
		t.Setenv("PRUNE_INTERVAL", v)
		assert.Equal(t, 5*time.Minute, Load().PruneInterval, "PRUNE_INTERVAL=%q", v)
	}

	t.Setenv("PRUNE_INTERVAL", "30s")
	assert.Equal(t, 30*time.Second, Load().PruneInterval)
}
