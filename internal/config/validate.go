package config

import (
	"fmt"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found,
// wrapping voyageerr.ErrInvalidArgument.
//
// Validation rules:
//   - DefaultShips must be positive
//   - StaleThresholdMinutes must be positive
//   - Remote.WaitReadyTimeout must be positive
//   - Remote.CommandTimeout must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", voyageerr.ErrInvalidArgument)
	}

	if cfg.DefaultShips <= 0 {
		return fmt.Errorf("%w: default_ships must be positive, got %d",
			voyageerr.ErrInvalidArgument, cfg.DefaultShips)
	}

	if cfg.StaleThresholdMinutes <= 0 {
		return fmt.Errorf("%w: stale_threshold_minutes must be positive, got %d",
			voyageerr.ErrInvalidArgument, cfg.StaleThresholdMinutes)
	}

	if err := validateRemoteConfig(&cfg.Remote); err != nil {
		return err
	}

	if cfg.AgentCommand == "" {
		return fmt.Errorf("%w: agent_command must not be empty", voyageerr.ErrInvalidArgument)
	}

	return nil
}

func validateRemoteConfig(cfg *RemoteConfig) error {
	if cfg.WaitReadyTimeout <= 0 {
		return fmt.Errorf("%w: remote.wait_ready_timeout must be positive, got %s",
			voyageerr.ErrInvalidArgument, cfg.WaitReadyTimeout)
	}

	if cfg.CommandTimeout <= 0 {
		return fmt.Errorf("%w: remote.command_timeout must be positive, got %s",
			voyageerr.ErrInvalidArgument, cfg.CommandTimeout)
	}

	return nil
}
