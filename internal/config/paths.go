// Package config provides layered configuration for voyager.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (VOYAGER_* prefix)
//  3. Project config (./voyager.yaml)
//  4. Global config (~/.config/voyager/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same
// key.
//
// IMPORTANT: this package may import internal/constants and
// internal/voyageerr, but MUST NOT import internal/domain or any other
// internal package.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

const (
	globalConfigDirName  = "voyager"
	projectConfigFile    = "voyager.yaml"
	globalConfigFileName = "config.yaml"
)

// GlobalConfigDir returns ~/.config/voyager.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: determine home directory: %w", voyageerr.ErrEmptyValue, err)
	}
	return filepath.Join(home, ".config", globalConfigDirName), nil
}

// GlobalConfigPath returns ~/.config/voyager/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, globalConfigFileName), nil
}

// ProjectConfigPath returns the project-local ./voyager.yaml path.
func ProjectConfigPath() string {
	return projectConfigFile
}

// SaveGlobalDefaults writes the built-in defaults to
// ~/.config/voyager/config.yaml if no global config file exists yet,
// so a fresh operator has a starting point to edit rather
// than an undiscoverable set of env vars. A pre-existing file is left
// untouched.
func SaveGlobalDefaults() (path string, written bool, err error) {
	path, err = GlobalConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return path, false, nil
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", false, fmt.Errorf("marshal default configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", false, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", false, fmt.Errorf("write %s: %w", path, err)
	}
	return path, true, nil
}
