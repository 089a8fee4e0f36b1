package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "test-key")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, []string{"http://localhost:3000", "https://lex-analytica-app.vercel.app"}, cfg.Server.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
env: development
server:
  port: 9100
  allow_origins: ["http://localhost:5173", " ", "https://example.org"]
model:
  provider: " OpenAI "
  name: gpt-4o-mini
  api_key_env: OPENAI_API_KEY
limits:
  max_files: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MODEL_NAME", "gpt-4.1")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173", "https://example.org"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4.1", cfg.Model.Name)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, 3, cfg.Limits.MaxFiles)
	// untouched sections keep their defaults
	assert.Equal(t, int64(8), cfg.Limits.MaxConcurrentAnalyses)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_MissingCredential(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)

	var startupErr *StartupError
	require.True(t, errors.As(err, &startupErr))
	assert.Equal(t, DefaultAPIKeyEnv, startupErr.Field)
}

func TestValidate_BadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "k"
	cfg.Server.Port = 70000

	assert.Error(t, cfg.Validate())
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "k")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = 8123
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.Server.Port)
	assert.Equal(t, cfg.Model, loaded.Model)
}
