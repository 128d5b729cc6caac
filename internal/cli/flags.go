// Package cli provides the command-line interface for voyager.
package cli

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitInvalidUsage indicates invalid flags, arguments, or output format.
	ExitInvalidUsage = 1
	// ExitNotFound indicates the target voyage or task could not be
	// resolved, or its identifier was ambiguous.
	ExitNotFound = 2
	// ExitRemoteFailure indicates the provider or remote-exec transport
	// failed (VM provisioning, SSH connect, command execution, timeout).
	ExitRemoteFailure = 3
	// ExitPartialSuccess indicates the command completed but one or more
	// non-fatal warnings occurred (e.g. some ships failed to bootstrap
	// during sail, but the voyage was still created).
	ExitPartialSuccess = 4
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper for configuration file and
// environment variable support. The VOYAGER_ prefix is used for
// environment variables (e.g., VOYAGER_OUTPUT, VOYAGER_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Use Root().PersistentFlags() to find flags defined on the root
	// command, even when called from a subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()

	if err := v.BindPFlag("output", rootFlags.Lookup("output")); err != nil {
		return err
	}
	if err := v.BindPFlag("verbose", rootFlags.Lookup("verbose")); err != nil {
		return err
	}
	if err := v.BindPFlag("quiet", rootFlags.Lookup("quiet")); err != nil {
		return err
	}

	v.SetEnvPrefix("VOYAGER")
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// ExitCodeForError maps an error to the CLI's four-way exit code scheme.
// An explicit *voyageerr.ExitCodeError always wins; otherwise the error
// is classified by the sentinel it wraps.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *voyageerr.ExitCodeError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case stderrors.Is(err, voyageerr.ErrNotFound), stderrors.Is(err, voyageerr.ErrAmbiguousVoyage):
		return ExitNotFound

	case stderrors.Is(err, voyageerr.ErrProviderUnavailable),
		stderrors.Is(err, voyageerr.ErrQuotaExceeded),
		stderrors.Is(err, voyageerr.ErrConnectError),
		stderrors.Is(err, voyageerr.ErrExecError),
		stderrors.Is(err, voyageerr.ErrTimeout),
		stderrors.Is(err, voyageerr.ErrStorageProvisionFailed),
		stderrors.Is(err, voyageerr.ErrRepoSeedFailed),
		stderrors.Is(err, voyageerr.ErrMountFailed),
		stderrors.Is(err, voyageerr.ErrAgentStartFailed),
		stderrors.Is(err, voyageerr.ErrLockTimeout):
		return ExitRemoteFailure

	case stderrors.Is(err, voyageerr.ErrInvalidOutputFormat),
		stderrors.Is(err, voyageerr.ErrInvalidArgument),
		stderrors.Is(err, voyageerr.ErrEmptyValue),
		stderrors.Is(err, voyageerr.ErrNonInteractiveMode),
		stderrors.Is(err, voyageerr.ErrInvalidPlan):
		return ExitInvalidUsage
	}

	if isInvalidInputError(err.Error()) {
		return ExitInvalidUsage
	}

	return ExitInvalidUsage
}

// isInvalidInputError checks if an error message indicates invalid user
// input. This catches Cobra's built-in flag validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
