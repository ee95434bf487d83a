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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "id", cfg.LLM.Language)
	assert.Equal(t, 8, cfg.Cache.MaxDatasets)
	assert.Equal(t, ":8090", cfg.Addr())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
server:
  port: 9000
llm:
  provider: chat
  model: deepseek-chat
  timeout: 45s
cache:
  max_datasets: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	t.Setenv("MEDIAINTEL_LLM_MODEL", "deepseek-reasoner")
	t.Setenv("MEDIAINTEL_LLM_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port, "file overrides defaults")
	assert.Equal(t, "chat", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Cache.MaxDatasets)
	assert.Equal(t, "deepseek-reasoner", cfg.LLM.Model, "env overrides file")
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "release", cfg.Server.Mode, "untouched defaults survive")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "verbose" }},
		{"zero cache", func(c *Config) { c.Cache.MaxDatasets = 0 }},
		{"zero upload", func(c *Config) { c.Upload.MaxBytes = 0 }},
		{"bad provider", func(c *Config) { c.LLM.Provider = "bard" }},
		{"bad language", func(c *Config) { c.LLM.Language = "fr" }},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"negative rate", func(c *Config) { c.LLM.RatePerMinute = -1 }},
	}

	require.NoError(t, Defaults().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
