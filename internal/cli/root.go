// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalLogger stores the initialized logger for use by subcommands,
// set during PersistentPreRunE and read via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// IMPORTANT: This function MUST only be called after the root command's
// PersistentPreRunE has executed; calling it earlier returns a
// zero-value logger that discards all output. Safe for concurrent use.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// newRootCmd creates the root command for the voyager CLI. Building it
// via a function rather than a package-level global keeps it testable.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "voyager",
		Short: "voyager orchestrates multi-agent coding voyages over a shared filesystem",
		Long: `voyager is a control-plane CLI: it provisions a shared storage volume and a
fleet of ephemeral agent VMs ("ships"), hands out a pre-authored task set,
and tracks each ship's progress by reading task metadata left on disk —
no long-running coordinator process, no central job queue.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", voyageerr.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		SilenceUsage: true,
	}

	AddGlobalFlags(cmd, flags)

	AddSailCommand(cmd)
	AddResumeCommand(cmd)
	AddStatusCommand(cmd)
	AddTasksCommand(cmd)
	AddResetTaskCommand(cmd)
	AddLogsCommand(cmd)
	AddShellCommand(cmd)
	AddSinkCommand(cmd)
	AddAbandonCommand(cmd)
	AddCloneCommand(cmd)
	AddDoctorCommand(cmd)
	AddCompletionCommand(cmd)

	return cmd
}

func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command and returns the process exit code
// appropriate to whatever error it produced, per ExitCodeForError.
func Execute(ctx context.Context, info BuildInfo) int {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	CloseLogFile()
	return ExitCodeForError(err)
}
