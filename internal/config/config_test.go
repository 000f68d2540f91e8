package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Sandbox config
	assert.Equal(t, 5000, cfg.Sandbox.TimeoutMS)
	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.True(t, cfg.Sandbox.EnableConsole)
	assert.True(t, cfg.Sandbox.EnableWebAPIs)
	assert.True(t, cfg.Sandbox.Disguise)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Catalog config
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, 5000, cfg.Sandbox.TimeoutMS)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"SANDBOX_TIMEOUT_MS": "250",
		"SANDBOX_POOL":       "8",
		"SANDBOX_CONSOLE":    "false",
		"SANDBOX_WEBAPI":     "false",
		"SANDBOX_DISGUISE":   "false",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"CATALOG_PATH":       "/etc/njs/catalog.yaml",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Sandbox.TimeoutMS)
	assert.Equal(t, 8, cfg.Sandbox.PoolSize)
	assert.False(t, cfg.Sandbox.EnableConsole)
	assert.False(t, cfg.Sandbox.EnableWebAPIs)
	assert.False(t, cfg.Sandbox.Disguise)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, "/etc/njs/catalog.yaml", cfg.Catalog.Path)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("SANDBOX_TIMEOUT_MS", "100")
	require.NoError(t, err)
	defer os.Unsetenv("SANDBOX_TIMEOUT_MS")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, 100, cfg.Sandbox.TimeoutMS)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.True(t, cfg.Sandbox.Disguise)
}
