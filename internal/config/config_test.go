package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOMEFIX_STATE_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8081", cfg.APIBase)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.BreakerEnabled)
	assert.Empty(t, cfg.PublicAssetBase)
}

func TestLoadFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOMEFIX_API_BASE", "https://api.homefix.example")
	t.Setenv("HOMEFIX_S3_PUBLIC_BASE", "https://cdn.homefix.example")
	t.Setenv("HOMEFIX_STATE_DIR", dir)
	t.Setenv("HOMEFIX_HTTP_TIMEOUT", "5s")
	t.Setenv("HOMEFIX_CIRCUIT_BREAKER", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.homefix.example", cfg.APIBase)
	assert.Equal(t, "https://cdn.homefix.example", cfg.PublicAssetBase)
	assert.Equal(t, dir, cfg.StateDir)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadAPIBase(t *testing.T) {
	t.Setenv("HOMEFIX_API_BASE", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaultsStateDir(t *testing.T) {
	t.Setenv("HOMEFIX_STATE_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.StateDir, "homefix")
}
