package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://api.razorpay.com", cfg.Razorpay.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.ReconcileInterval)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.PendingCutoff)
	assert.Equal(t, 90, cfg.Scheduler.WebhookRetentionDays)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORTAL_ENV", "production")
	t.Setenv("PORTAL_HTTP_ADDR", ":9090")
	t.Setenv("PORTAL_RAZORPAY_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("PORTAL_SCHEDULER_WEBHOOK_RETENTION_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "whsec_env", cfg.Razorpay.WebhookSecret)
	assert.Equal(t, 30, cfg.Scheduler.WebhookRetentionDays)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("env: staging\nhttp:\n  addr: \":7070\"\nrazorpay:\n  webhook_secret: whsec_file\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "portal.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "whsec_file", cfg.Razorpay.WebhookSecret)
	// Untouched keys keep their defaults.
	assert.Equal(t, "postgres", cfg.Database.Driver)
}
