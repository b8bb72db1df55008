package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkerFlagsDefaults(t *testing.T) {
	cfg, err := ParseWorkerFlags([]string{"--redis-url", "redis://localhost:6379/0"})
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/io/data", cfg.DataRoot)
	assert.Equal(t, "/io/svg", cfg.SVGPath)
}

func TestParseWorkerFlagsRequiresRedisURL(t *testing.T) {
	_, err := ParseWorkerFlags([]string{"--log-level", "debug"})
	assert.Error(t, err)
}

func TestLoadExporterConfigAppliesFormatDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exporter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mandant: acme\nproject: demo\n"), 0o644))

	cfg, err := LoadExporterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Mandant)
	assert.Equal(t, "json", cfg.Format)
}
