package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_KEY", "")
	cfg, notice, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, notice, "not found")
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "gemini-2.5-flash", cfg.AIModel)
	assert.Equal(t, "prettier", cfg.PrettierPath)
	assert.Equal(t, 10*time.Second, cfg.FormatTimeout)
	assert.True(t, cfg.AutoGenerate)
	assert.Equal(t, DefaultPrompt, cfg.DefaultPrompt)
	assert.Len(t, cfg.Warnings(), 1)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("AUTO_GENERATE", "false")
	t.Setenv("FORMAT_TIMEOUT", "3s")

	cfg, _, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.False(t, cfg.AutoGenerate)
	assert.Equal(t, 3*time.Second, cfg.FormatTimeout)
	assert.Empty(t, cfg.Warnings())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("API_KEY", "")
	dir := t.TempDir()
	content := "AI_MODEL: gemini-2.5-pro\nDEFAULT_PROMPT: a bakery homepage\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, notice, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Contains(t, notice, "config.yaml")
	assert.Equal(t, "gemini-2.5-pro", cfg.AIModel)
	assert.Equal(t, "a bakery homepage", cfg.DefaultPrompt)
}
