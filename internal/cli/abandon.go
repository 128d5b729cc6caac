// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// shipDestroyer is the capability runAbandonWithDeps needs: enumerate a
// voyage's VMs by prefix and tear individual ones down. internal/provider
// satisfies this.
type shipDestroyer interface {
	List(ctx context.Context, namePrefix string) ([]provider.VM, error)
	Destroy(ctx context.Context, id string) error
}

// AddAbandonCommand adds the abandon command to the root command.
func AddAbandonCommand(parent *cobra.Command) {
	var voyageID string
	var force bool

	cmd := &cobra.Command{
		Use:   "abandon",
		Short: "Destroy every ship in a voyage, preserving storage",
		Long: `Destroy every VM matching <voyage-id>-ship-*, leaving the storage VM
(and therefore the task set and artifacts) in place. Use 'voyager sink'
to tear down storage as well.

Examples:
  voyager abandon
  voyager abandon --voyage voyage-abc123 --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runAbandon(cmd.Context(), cmd, os.Stdout, voyageID, force)
			if stderrors.Is(err, voyageerr.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	parent.AddCommand(cmd)
}

func runAbandon(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID string, force bool) error {
	output := cmd.Flag("output").Value.String()
	tui.CheckNoColor()

	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	storage, err := resolveStorage(ctx, rt.provider, voyageID)
	if err != nil {
		return err
	}
	resolvedID := voyageIDFromVMName(storage.Name)

	return runAbandonWithDeps(ctx, w, output, rt.provider, resolvedID, force)
}

func runAbandonWithDeps(ctx context.Context, w io.Writer, output string, destroyer shipDestroyer, voyageID string, force bool) error {
	out := tui.NewOutput(w, output)

	ships, err := destroyer.List(ctx, voyageID+"-ship-")
	if err != nil {
		return handleFleetError(output, w, err)
	}
	if len(ships) == 0 {
		out.Info("no ships to abandon")
		return nil
	}

	if !force {
		if !terminalCheck() {
			return handleFleetError(output, w, fmt.Errorf("cannot abandon without --force: %w", voyageerr.ErrNonInteractiveMode))
		}
		confirmed, err := confirmAbandon(voyageID, len(ships))
		if err != nil {
			return handleFleetError(output, w, fmt.Errorf("failed to get confirmation: %w", err))
		}
		if !confirmed {
			out.Info("abandon canceled")
			return nil
		}
	}

	var failed []string
	for _, ship := range ships {
		if err := destroyer.Destroy(ctx, ship.Name); err != nil {
			failed = append(failed, ship.Name)
		}
	}

	if output == OutputJSON {
		if jsonErr := out.JSON(fleetResult{Voyage: voyageID, Destroyed: vmNames(ships, failed), Failed: failed}); jsonErr != nil {
			return jsonErr
		}
	} else {
		out.Success(fmt.Sprintf("abandoned %d of %d ship(s) for voyage %s", len(ships)-len(failed), len(ships), voyageID))
		for _, name := range failed {
			out.Warning(fmt.Sprintf("%s failed to destroy", name))
		}
	}

	if len(failed) > 0 {
		return voyageerr.NewExitCodeError(ExitPartialSuccess, fmt.Errorf("%d ship(s) failed to destroy", len(failed)))
	}
	return nil
}

// createAbandonConfirmForm is the default factory for the abandon
// confirmation prompt. Overridable in tests.
//
//nolint:gochecknoglobals // test injection point
var createAbandonConfirmForm = defaultCreateAbandonConfirmForm

func defaultCreateAbandonConfirmForm(voyageID string, shipCount int, confirm *bool) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Abandon %d ship(s) for voyage '%s'?", shipCount, voyageID)).
				Description("Storage will be preserved; use 'voyager sink' to remove it too.").
				Affirmative("Yes, abandon").
				Negative("No, cancel").
				Value(confirm),
		),
	)
}

func confirmAbandon(voyageID string, shipCount int) (bool, error) {
	var confirm bool
	form := createAbandonConfirmForm(voyageID, shipCount, &confirm)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirm, nil
}
