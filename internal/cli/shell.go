// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/provider"
)

// shellDialer is the capability runShellWithDeps needs to resolve a
// ship's SSH destination before handing the terminal to it.
type shellDialer interface {
	Get(ctx context.Context, shipID string) (provider.VM, error)
}

type shellRuntimeDialer struct {
	prov   provider.Provider
	voyage domain.Voyage
}

func (d shellRuntimeDialer) Get(ctx context.Context, shipID string) (provider.VM, error) {
	return shipSSHDest(ctx, d.prov, d.voyage, shipID)
}

// interactiveShell is the capability that actually replaces the process
// image with an interactive SSH session. remoteexec.Client satisfies
// this.
type interactiveShell interface {
	Interactive(sshDest string) error
}

// AddShellCommand adds the shell command to the root command.
func AddShellCommand(parent *cobra.Command) {
	var voyageID string

	cmd := &cobra.Command{
		Use:   "shell <ship>",
		Short: "Open an interactive shell on a ship",
		Long: `Replace the current process with a direct interactive SSH session
to the named ship, using the local ssh binary so raw terminal mode,
window resize, and pty allocation behave exactly as they would for a
manually run ssh command.

Examples:
  voyager shell ship-0
  voyager shell ship-2 --voyage voyage-abc123`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), voyageID, args[0])
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	parent.AddCommand(cmd)
}

func runShell(ctx context.Context, voyageID, shipID string) error {
	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	storage, err := resolveStorage(ctx, rt.provider, voyageID)
	if err != nil {
		return err
	}
	voyage, err := loadVoyage(ctx, rt.remote, storage)
	if err != nil {
		return err
	}

	dialer := shellRuntimeDialer{prov: rt.provider, voyage: voyage}
	return runShellWithDeps(ctx, dialer, rt.remote, shipID)
}

func runShellWithDeps(ctx context.Context, dialer shellDialer, shell interactiveShell, shipID string) error {
	vm, err := dialer.Get(ctx, shipID)
	if err != nil {
		return err
	}
	return shell.Interactive(vm.SSHDest)
}
