package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewManager("").Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RateLimitPerMin)

	assert.Equal(t, "https://llm.nrp-nautilus.io/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "qwen3-vl", cfg.LLM.DefaultModel)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.True(t, cfg.LLM.MockMode)

	assert.True(t, cfg.Telemetry.SimulateData)
	assert.Equal(t, 30, cfg.Telemetry.FetchTimeoutSeconds)

	assert.Equal(t, 50, cfg.Chat.MaxHistory)
	assert.Equal(t, 10, cfg.Chat.ContextWindow)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
llm:
  defaultmodel: glm-4.7
  mockmode: false
chat:
  maxhistory: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewManager(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "glm-4.7", cfg.LLM.DefaultModel)
	assert.False(t, cfg.LLM.MockMode)
	assert.Equal(t, 20, cfg.Chat.MaxHistory)

	// Unset fields keep their defaults.
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("NETAI_SERVER_PORT", "7777")
	t.Setenv("NETAI_LLM_APIKEY", "secret-from-env")

	cfg, err := NewManager("").Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "secret-from-env", cfg.LLM.APIKey)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o644))

	_, err := NewManager(path).Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := NewManager("").Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.LLM.Temperature = 3.5
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.LLM.MaxTokens = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chat.MaxHistory = 1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Chat.ContextWindow = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Telemetry.FetchTimeoutSeconds = 0
	assert.Error(t, cfg.Validate())
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewManager("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
}
