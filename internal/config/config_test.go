package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Simulation.BeltSlots)
	assert.Equal(t, 5, cfg.Simulation.UserRows)
	assert.True(t, cfg.Logging.ToConsole)
	assert.Equal(t, logging.LevelInfo, cfg.Logging.Level)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("DOCKYARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "TRUE")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Logging.ToConsole)
	assert.True(t, cfg.Logging.ToFile)
	assert.Equal(t, logging.LevelDebug, cfg.Logging.Level)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dockyard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  belt_slots: 20\n  trucks: 7\n"), 0o644))

	t.Setenv("DOCKYARD_CONFIG", path)
	t.Setenv("LOG_TO_CONSOLE", "")
	os.Unsetenv("LOG_TO_CONSOLE")
	os.Unsetenv("LOG_TO_FILE")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Simulation.BeltSlots)
	assert.Equal(t, 7, cfg.Simulation.Trucks)
	// Unset fields fall back to defaults rather than staying zero.
	assert.Equal(t, Default().Simulation.Workers, cfg.Simulation.Workers)
}

func TestParseBoolFallback(t *testing.T) {
	assert.True(t, parseBool("not-a-bool", true))
	assert.False(t, parseBool("not-a-bool", false))
	assert.True(t, parseBool("TRUE", false))
}
