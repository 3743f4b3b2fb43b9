package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "google", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, "https://api.fonnte.com/send", cfg.Fonnte.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Fonnte.Timeout)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	yaml := `
server:
  port: 9090
llm:
  model: gemini-2.0-flash
  api_key: test-key
fonnte:
  token: test-token
rate_limit:
  enabled: true
  requests_per_minute: 120
`
	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "test-token", cfg.Fonnte.Token)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)

	// Untouched fields keep their defaults.
	assert.Equal(t, "google", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_FONNTE_TOKEN", "secret-token")

	yaml := `
fonnte:
  token: ${TEST_FONNTE_TOKEN}
llm:
  api_key: ${TEST_MISSING_KEY:-fallback-key}
`
	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Fonnte.Token)
	assert.Equal(t, "fallback-key", cfg.LLM.APIKey)
}

func TestLoad_MissingSecretsStillValid(t *testing.T) {
	// The relay starts degraded without secrets rather than refusing to run.
	yaml := `
fonnte:
  token: ""
llm:
  api_key: ""
`
	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Empty(t, cfg.Fonnte.Token)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "port out of range",
			yaml: "server:\n  port: 70000\n",
		},
		{
			name: "bad logging level",
			yaml: "logging:\n  level: loud\n",
		},
		{
			name: "bad endpoint",
			yaml: "fonnte:\n  endpoint: not-a-url\n",
		},
		{
			name: "zero completion timeout",
			yaml: "llm:\n  timeout: 0s\n",
		},
		{
			name: "not yaml",
			yaml: "{{nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}
