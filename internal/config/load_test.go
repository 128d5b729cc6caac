package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().DefaultShips, cfg.DefaultShips)
	assert.Equal(t, DefaultConfig().StaleThresholdMinutes, cfg.StaleThresholdMinutes)
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "provider: local\ndefault_ships: 7\nstale_threshold_minutes: 10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voyager.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Provider)
	assert.Equal(t, 7, cfg.DefaultShips)
	assert.Equal(t, 10, cfg.StaleThresholdMinutes)
}

func TestLoad_EnvOverridesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "default_ships: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voyager.yaml"), []byte(yaml), 0o644))

	t.Setenv("VOYAGER_DEFAULT_SHIPS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.DefaultShips)
}

func TestLoad_MissingConfigFilesIsNotAnError(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_MalformedProjectConfigIsAnError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "voyager.yaml"), []byte(":::not yaml"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadWithOverrides_CLIFlagsWinOverEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOYAGER_DEFAULT_SHIPS", "12")

	cfg, err := LoadWithOverrides(Overrides{DefaultShips: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.DefaultShips)
}

func TestLoadWithOverrides_ZeroValuesDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "default_ships: 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voyager.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadWithOverrides(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.DefaultShips)
}
