package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfigs creates a temporary directory structure for testing.
// It returns the temporary "configs" directory and a cleanup function.
func setupTestConfigs(t *testing.T) (string, func()) {
	configDir, err := os.MkdirTemp("", "config_test_")
	assert.NoError(t, err)

	// Viper requires a "configs" subdirectory to be present.
	actualConfigPath := filepath.Join(configDir, "configs")
	err = os.Mkdir(actualConfigPath, 0755)
	assert.NoError(t, err)

	// Change working directory to the parent of "configs"
	oldWd, err := os.Getwd()
	assert.NoError(t, err)
	err = os.Chdir(configDir)
	assert.NoError(t, err)

	cleanup := func() {
		os.Chdir(oldWd)
		os.RemoveAll(configDir)
	}

	return actualConfigPath, cleanup
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0644)
	require.NoError(t, err)
}

func TestLoad_Success(t *testing.T) {
	actualConfigPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	writeConfig(t, actualConfigPath, "covtree", `
config:
  log_level: "debug"
  source_dir: "/src/project"
  color: "never"
  tab_size: 4
`)

	var file configFile
	err := Load("covtree", &file)
	require.NoError(t, err)
	assert.Equal(t, "debug", file.Config.LogLevel)
	assert.Equal(t, "/src/project", file.Config.SourceDir)
	assert.Equal(t, "never", file.Config.Color)
	assert.Equal(t, 4, file.Config.TabSize)
}

func TestLoad_FileNotExists(t *testing.T) {
	_, cleanup := setupTestConfigs(t)
	defer cleanup()

	var file configFile
	err := Load("non_existent_config", &file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EmptyFile(t *testing.T) {
	actualConfigPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	writeConfig(t, actualConfigPath, "empty", "")

	var file configFile
	err := Load("empty", &file)
	assert.NoError(t, err) // Viper doesn't error on empty files, just unmarshals nothing
	assert.Empty(t, file.Config.LogLevel)
}

func TestLoad_MalformedYAML(t *testing.T) {
	actualConfigPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	writeConfig(t, actualConfigPath, "malformed", "config: test\n  log_level: oops") // Bad indentation

	var file configFile
	err := Load("malformed", &file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	_, cleanup := setupTestConfigs(t)
	defer cleanup()

	cfg, err := LoadConfigNamed("missing")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	actualConfigPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	writeConfig(t, actualConfigPath, "covtree", `
config:
  duplicate_policy: "reject"
  source_cache_size: 8
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "reject", cfg.DuplicatePolicy)
	assert.Equal(t, 8, cfg.SourceCacheSize)
	// Untouched keys keep their defaults
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8, cfg.TabSize)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	actualConfigPath, cleanup := setupTestConfigs(t)
	defer cleanup()

	writeConfig(t, actualConfigPath, "covtree", `
config:
  log_level: "warn"
`)
	t.Setenv("COVTREE_CONFIG_LOG_LEVEL", "error")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown policy", "config:\n  duplicate_policy: \"append\"\n"},
		{"unknown color", "config:\n  color: \"sometimes\"\n"},
		{"zero cache", "config:\n  source_cache_size: 0\n"},
		{"huge tabs", "config:\n  tab_size: 64\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualConfigPath, cleanup := setupTestConfigs(t)
			defer cleanup()

			writeConfig(t, actualConfigPath, "covtree", tt.content)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateColor(t *testing.T) {
	for _, mode := range []string{"auto", "always", "never"} {
		assert.NoError(t, ValidateColor(mode))
	}
	for _, mode := range []string{"", "alway", "yes"} {
		assert.Error(t, ValidateColor(mode), mode)
	}
}
