package config

import (
	"github.com/oceanvoyage/voyager/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values. These
// defaults are the base layer that config files, environment variables,
// and CLI flags all override.
func DefaultConfig() *Config {
	return &Config{
		Provider:              "",
		DefaultShips:          constants.DefaultShips,
		StaleThresholdMinutes: constants.DefaultStaleThresholdMinutes,
		Remote: RemoteConfig{
			WaitReadyTimeout: constants.DefaultWaitReadyTimeout,
			CommandTimeout:   constants.DefaultCommandTimeout,
		},
		ProviderCredentials: map[string]string{},
		AgentCommand:        constants.DefaultAgentCommand,
	}
}
