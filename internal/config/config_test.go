package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.Equal(t, "https://aroundegypt.34ml.com", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, DefaultProbeURL, cfg.Connectivity.ProbeURL)
	assert.Equal(t, "@every 30s", cfg.Connectivity.ProbeSchedule)
	assert.Equal(t, 5*time.Second, cfg.Connectivity.ProbeTimeout)
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, "*/30 * * * *", cfg.Refresh.Schedule)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 1, cfg.Tasks.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Equal(t, "local", cfg.Log.Env)
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/cache.db")
	t.Setenv("API_BASE_URL", "http://localhost:4000")
	t.Setenv("API_TIMEOUT", "2s")
	t.Setenv("REFRESH_ENABLED", "false")
	t.Setenv("TASK_WORKERS", "3")
	t.Setenv("LOG_ENV", "prod")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/tmp/cache.db", cfg.Database.Path)
	assert.Equal(t, "http://localhost:4000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Refresh.Enabled)
	assert.Equal(t, 3, cfg.Tasks.Workers)
	assert.Equal(t, "prod", cfg.Log.Env)
}
