package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadAppliesDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	path := writeConfig(t, "llm:\n  provider: google\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/invoices.db", cfg.Database.Path)
	assert.Equal(t, "output", cfg.Storage.OutputDir)
	assert.Equal(t, "uploads", cfg.Parser.UploadDir)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "g-key", cfg.LLM.APIKey())
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := writeConfig(t, "llm:\n  enabled: true\n  provider: google\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestLoadPatternOnlyNeedsNoKey(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := writeConfig(t, "llm:\n  enabled: false\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.LLM.Enabled)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	path := writeConfig(t, "llm:\n  enabled: true\n  provider: anthropic\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestAPIKeySelection(t *testing.T) {
	cfg := LLMConfig{Provider: "openai", GoogleAPIKey: "g", OpenAIAPIKey: "o"}
	assert.Equal(t, "o", cfg.APIKey())

	cfg.Provider = "google"
	assert.Equal(t, "g", cfg.APIKey())
}
