package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

func validConfig() *Config {
	return &Config{
		Provider:              "local",
		DefaultShips:          3,
		StaleThresholdMinutes: 30,
		Remote: RemoteConfig{
			WaitReadyTimeout: 5 * time.Minute,
			CommandTimeout:   60 * time.Second,
		},
		AgentCommand: "voyager-agent",
	}
}

func TestValidate_NilConfig(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, voyageerr.ErrInvalidArgument)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_InvalidCases(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default ships", func(c *Config) { c.DefaultShips = 0 }},
		{"negative default ships", func(c *Config) { c.DefaultShips = -1 }},
		{"zero stale threshold", func(c *Config) { c.StaleThresholdMinutes = 0 }},
		{"negative stale threshold", func(c *Config) { c.StaleThresholdMinutes = -1 }},
		{"zero wait ready timeout", func(c *Config) { c.Remote.WaitReadyTimeout = 0 }},
		{"zero command timeout", func(c *Config) { c.Remote.CommandTimeout = 0 }},
		{"empty agent command", func(c *Config) { c.AgentCommand = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, voyageerr.ErrInvalidArgument)
		})
	}
}
