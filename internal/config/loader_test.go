package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	t.Run("should return defaults when file does not exist", func(t *testing.T) {
		tmpDir := t.TempDir()
		loader := NewLoader(filepath.Join(tmpDir, "missing.json"))

		cfg, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4", cfg.Models.Default)
		assert.NotEmpty(t, cfg.Memory.Path)
		assert.NotEmpty(t, cfg.Templates.Path)
	})

	t.Run("should load values from file over defaults", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "mitra.json")

		content := `{
			"data_dir": "` + tmpDir + `",
			"models": {"default": "gpt-4-turbo"},
			"sessions": {"max_age_hours": 48},
			"ai": {"profiles": [{"id": "p1", "provider": "openai", "api_key": "sk-x"}]}
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4-turbo", cfg.Models.Default)
		assert.Equal(t, 48, cfg.Sessions.MaxAgeHours)
		assert.Equal(t, filepath.Join(tmpDir, "memory.json"), cfg.Memory.Path)
		require.Len(t, cfg.AI.Profiles, 1)
		assert.Equal(t, "openai", cfg.AI.Profiles[0].Provider)
	})

	t.Run("should error on malformed file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "mitra.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0600))

		_, err := Load(configPath)
		assert.Error(t, err)
	})

	t.Run("should report config path", func(t *testing.T) {
		loader := NewLoader("/tmp/custom.json")
		assert.Equal(t, "/tmp/custom.json", loader.GetConfigPath())
	})
}
