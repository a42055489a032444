package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv_Defaults(t *testing.T) {
	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "web", cfg.HTTP.UIStaticDir)
	assert.True(t, cfg.HTTP.UIEnabled)

	assert.Equal(t, "data/uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(2048)*1024*1024, cfg.Upload.MaxBytes)
	assert.Equal(t, 2*time.Hour, cfg.Upload.TTL)
	assert.Equal(t, "*/30 * * * *", cfg.Upload.SweepCron)

	assert.Equal(t, "whisper", cfg.Whisper.Binary)
	assert.Equal(t, 5, cfg.Whisper.CacheCapacity)

	assert.Equal(t, 1, cfg.Jobs.Workers)
	assert.Equal(t, "data/transcriber.db", cfg.Jobs.DBPath)
	assert.Equal(t, "info", cfg.System.LogLevel)
}

func TestNewFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("UI_ENABLED", "false")
	t.Setenv("UPLOAD_MAX_MB", "512")
	t.Setenv("WHISPER_BIN", "/opt/whisper/bin/whisper")
	t.Setenv("MODEL_CACHE_SIZE", "2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.HTTP.UIEnabled)
	assert.Equal(t, int64(512)*1024*1024, cfg.Upload.MaxBytes)
	assert.Equal(t, "/opt/whisper/bin/whisper", cfg.Whisper.Binary)
	assert.Equal(t, 2, cfg.Whisper.CacheCapacity)
	assert.Equal(t, "debug", cfg.System.LogLevel)
}

func TestNewFromEnv_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("JOB_WORKERS", "not-a-number")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Jobs.Workers)
}

func TestNewFromEnv_RejectsNonPositiveUploadCap(t *testing.T) {
	t.Setenv("UPLOAD_MAX_MB", "0")

	_, err := NewFromEnv()
	require.Error(t, err)
}

func TestNewFromEnv_Options(t *testing.T) {
	cfg, err := NewFromEnv(func(c *Config) {
		c.Jobs.DBPath = "/tmp/test.db"
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.Jobs.DBPath)
}
