package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "mureport", configBaseName)
	assert.Equal(t, "mureport.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "results-dir", resultsDirFlagName)
	assert.Equal(t, "source-dir", sourceDirFlagName)
	assert.Equal(t, "resource-dir", resourceDirFlagName)
	assert.Equal(t, "diff", diffFlagName)
	assert.Equal(t, "pre-cache-all", preCacheFlagName)
	assert.Equal(t, "port", portFlagName)
	assert.Equal(t, "export-dir", exportDirFlagName)
	assert.Equal(t, "report.results_dir", resultsDirConfigKey)
	assert.Equal(t, "serve.port", portConfigKey)
	assert.Equal(t, "target/mutest", defaultResultsDir)
	assert.Equal(t, "advanced", defaultDiff)
	assert.Equal(t, 8000, defaultPort)
	assert.Equal(t, "MUREPORT", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"empty", "", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"mixed case", "DeBuG", slog.LevelDebug},
		{"numeric", "-4", slog.Level(-4)},
		{"whitespace", "  info  ", slog.LevelInfo},
		{"unknown", "loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSlogLevel(tt.value, slog.LevelWarn)
			assert.Equal(t, tt.want, got)
		})
	}
}
