package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// newViperInstance creates a new Viper instance with the VOYAGER_
// environment variable prefix and built-in defaults as the base layer.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("VOYAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("default_ships", d.DefaultShips)
	v.SetDefault("stale_threshold_minutes", d.StaleThresholdMinutes)
	v.SetDefault("remote.wait_ready_timeout", d.Remote.WaitReadyTimeout)
	v.SetDefault("remote.command_timeout", d.Remote.CommandTimeout)
	v.SetDefault("agent_command", d.AgentCommand)
}

func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	// With SetConfigFile, viper reports a missing file as a plain
	// *fs.PathError rather than ConfigFileNotFoundError.
	return stderrors.As(err, &notFound) || stderrors.Is(err, fs.ErrNotExist)
}

func viperDecoderOption() viper.DecoderConfigOption {
	return func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		// No home directory: treat as "no global config", not fatal.
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("read global config %s: %w", path, err)
	}
	return nil
}

func loadProjectConfig(v *viper.Viper) error {
	v.SetConfigFile(ProjectConfigPath())
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("read project config %s: %w", ProjectConfigPath(), err)
	}
	return nil
}

// Load reads configuration from all available sources with proper
// precedence: environment (VOYAGER_* prefix) > project config
// (./voyager.yaml) > global config (~/.config/voyager/config.yaml) >
// built-in defaults.
//
// Missing config files are expected and not an error; Load only returns
// an error for genuine configuration problems (malformed YAML, failed
// validation).
func Load() (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(v)
}

// Overrides carries CLI-flag-sourced values that take precedence over
// every other configuration source when set (non-zero / non-empty).
type Overrides struct {
	Provider              string
	DefaultShips          int
	StaleThresholdMinutes int
}

// LoadWithOverrides loads configuration via Load and then applies any
// non-zero fields from overrides, which models CLI flags: the highest
// precedence layer.
func LoadWithOverrides(overrides Overrides) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if overrides.Provider != "" {
		cfg.Provider = overrides.Provider
	}
	if overrides.DefaultShips > 0 {
		cfg.DefaultShips = overrides.DefaultShips
	}
	if overrides.StaleThresholdMinutes > 0 {
		cfg.StaleThresholdMinutes = overrides.StaleThresholdMinutes
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", voyageerr.ErrInvalidArgument, err)
	}

	return cfg, nil
}
