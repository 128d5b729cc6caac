package config

import (
	"time"

	"github.com/oceanvoyage/voyager/internal/constants"
)

// Config is the root configuration structure for voyager.
type Config struct {
	// Provider selects the VM backend used by the Provider Port (C1).
	Provider string `yaml:"provider" mapstructure:"provider"`

	// DefaultShips is used when a plan's voyage.json omits
	// recommended_ships and no --ships override is given.
	DefaultShips int `yaml:"default_ships" mapstructure:"default_ships"`

	// StaleThresholdMinutes is the Status Deriver's staleness window.
	StaleThresholdMinutes int `yaml:"stale_threshold_minutes" mapstructure:"stale_threshold_minutes"`

	// Remote holds timeouts for the remote-exec transport.
	Remote RemoteConfig `yaml:"remote" mapstructure:"remote"`

	// ProviderCredentials passes opaque provider-specific environment
	// variables through to the selected Provider Port backend without
	// the core ever interpreting their contents.
	ProviderCredentials map[string]string `yaml:"provider_credentials" mapstructure:"provider_credentials"`

	// AgentCommand is the command line started detached on each ship by
	// Ship Bootstrap (C7 step 5). The agent runtime itself is an
	// external collaborator; this only names how to start it.
	AgentCommand string `yaml:"agent_command" mapstructure:"agent_command"`
}

// RemoteConfig bounds the blocking remote operations used throughout the
// control plane (§5 cancellation and timeouts).
type RemoteConfig struct {
	// WaitReadyTimeout bounds Provider.WaitReady.
	WaitReadyTimeout time.Duration `yaml:"wait_ready_timeout" mapstructure:"wait_ready_timeout"`

	// CommandTimeout bounds a single Remote Exec command (not used for
	// follow-mode streaming, which has no timeout).
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`
}

// StaleThreshold returns the configured staleness window as a
// time.Duration, falling back to the package default if unset.
func (c *Config) StaleThreshold() time.Duration {
	if c.StaleThresholdMinutes <= 0 {
		return constants.DefaultStaleThresholdMinutes * time.Minute
	}
	return time.Duration(c.StaleThresholdMinutes) * time.Minute
}

// ShipCount resolves the number of ships to launch: an explicit override
// wins, then the plan's recommendation, then the configured default.
func (c *Config) ShipCount(override, planRecommended int) int {
	if override > 0 {
		return override
	}
	if planRecommended > 0 {
		return planRecommended
	}
	if c.DefaultShips > 0 {
		return c.DefaultShips
	}
	return constants.DefaultShips
}
