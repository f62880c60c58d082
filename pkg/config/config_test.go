package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gantryci/gantry/pkg/errors"
	"github.com/gantryci/gantry/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultWorkflowsDir, cfg.Settings.WorkflowsDir)
	assert.Equal(t, DefaultOutputDir, cfg.Publish.OutputDir)
	assert.Equal(t, lint.DefaultMaxLineLength, cfg.Lint.MaxLineLength)
	assert.Positive(t, cfg.Settings.MaxWorkers)
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  log_level: debug
  output_format: json
  max_workers: 4
lint:
  paths:
    - src
    - test
  ignore:
    - GL101
  suppressions:
    - 'line too long'
publish:
  index_url: https://index.example.com/upload
  credential_env: INDEX_TOKEN
  metadata:
    name: braket-sdk
    version: 1.0.0`

	err := os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "json", cfg.Settings.OutputFormat)
	assert.Equal(t, 4, cfg.Settings.MaxWorkers)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, []string{"src", "test"}, cfg.Lint.Paths)
	assert.Equal(t, []string{"GL101"}, cfg.Lint.Ignore)
	assert.Equal(t, "https://index.example.com/upload", cfg.Publish.IndexURL)
	assert.Equal(t, "INDEX_TOKEN", cfg.Publish.CredentialEnv)
	assert.Equal(t, "braket-sdk", cfg.Publish.Metadata.Name)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("settings: [broken"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigParse)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad output format", content: "settings:\n  output_format: xml\n"},
		{name: "bad log level", content: "settings:\n  log_level: loud\n"},
		{name: "bad suppression regex", content: "lint:\n  suppressions:\n    - '('\n"},
		{name: "select and ignore conflict", content: "lint:\n  select: [GL101]\n  ignore: [GL101]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfigValidation)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Publish.IndexURL = "https://index.example.com/upload"

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	err := cfg.SaveConfig(configPath)
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Settings.LogLevel)
	assert.Equal(t, "https://index.example.com/upload", loaded.Publish.IndexURL)
}

func TestSaveConfigEmptyPath(t *testing.T) {
	err := DefaultConfig().SaveConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}
