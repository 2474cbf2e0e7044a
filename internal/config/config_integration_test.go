//go:build integration

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Integration(t *testing.T) {
	// This test requires the actual config files to be present
	// Try multiple paths to find the configs directory
	configPaths := []string{
		"configs/covtree.yaml",
		"../configs/covtree.yaml",
		"../../configs/covtree.yaml",
	}

	configFound := false
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			configFound = true
			break
		}
	}

	if !configFound {
		t.Skip("Skipping integration test: config files not found")
	}

	// Load the full configuration
	cfg, err := LoadConfig()
	require.NoError(t, err, "LoadConfig should succeed with real config files")

	assert.NotEmpty(t, cfg.LogLevel, "Log level should be loaded")
	assert.NotEmpty(t, cfg.DuplicatePolicy, "Duplicate policy should be loaded")
	assert.Positive(t, cfg.SourceCacheSize)
	assert.Positive(t, cfg.TabSize)
}
