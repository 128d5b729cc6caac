// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/localsync"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// fleetDestroyer is the capability runSinkWithDeps needs: enumerate VMs
// by prefix and tear individual ones down. internal/provider.Provider
// satisfies this.
type fleetDestroyer interface {
	List(ctx context.Context, namePrefix string) ([]provider.VM, error)
	Destroy(ctx context.Context, id string) error
}

// syncTerminator tears down the local-mirror sync sessions for a voyage
// once its storage VM is gone. internal/localsync satisfies this via
// realSyncTerminator.
type syncTerminator interface {
	TerminateVoyageSyncs(ctx context.Context, voyageID string) error
}

type realSyncTerminator struct{}

func (realSyncTerminator) TerminateVoyageSyncs(ctx context.Context, voyageID string) error {
	return localsync.TerminateVoyageSyncs(ctx, voyageID)
}

// fleetResult is the JSON shape shared by abandon and sink.
type fleetResult struct {
	Voyage    string   `json:"voyage,omitempty"`
	Destroyed []string `json:"destroyed"`
	Failed    []string `json:"failed,omitempty"`
}

// AddSinkCommand adds the sink command to the root command.
func AddSinkCommand(parent *cobra.Command) {
	var includeStorage bool
	var all bool
	var force bool

	cmd := &cobra.Command{
		Use:   "sink [voyage_id]",
		Short: "Destroy a voyage's fleet",
		Long: `Destroy every ship VM for a voyage. With --include-storage, the
storage VM (and its task set and artifacts) is destroyed too. With
--all, every VM matching the control plane's overall voyage prefix is
destroyed, across every voyage in flight.

All destructive operations here are idempotent: re-running after a
partial failure, or against a voyage already torn down, is safe.

Examples:
  voyager sink voyage-abc123
  voyager sink voyage-abc123 --include-storage --force
  voyager sink --all --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			voyageID := ""
			if len(args) == 1 {
				voyageID = args[0]
			}
			err := runSink(cmd.Context(), cmd, os.Stdout, voyageID, includeStorage, all, force)
			if stderrors.Is(err, voyageerr.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&includeStorage, "include-storage", false, "also destroy the storage VM")
	cmd.Flags().BoolVar(&all, "all", false, "destroy every voyage's VMs, ignoring the voyage id argument")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	parent.AddCommand(cmd)
}

func runSink(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID string, includeStorage, all, force bool) error {
	if all && voyageID != "" {
		return fmt.Errorf("%w: a voyage id and --all are mutually exclusive", voyageerr.ErrInvalidArgument)
	}

	output := cmd.Flag("output").Value.String()
	tui.CheckNoColor()

	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	prefix := domain.VoyagePrefix
	label := "every voyage"
	if !all {
		storage, err := resolveStorage(ctx, rt.provider, voyageID)
		if err != nil {
			return err
		}
		resolvedID := voyageIDFromVMName(storage.Name)
		prefix = resolvedID + "-"
		label = resolvedID
	}

	return runSinkWithDeps(ctx, w, output, rt.provider, realSyncTerminator{}, prefix, label, includeStorage || all, force)
}

func runSinkWithDeps(ctx context.Context, w io.Writer, output string, destroyer fleetDestroyer, terminator syncTerminator, prefix, label string, includeStorage, force bool) error {
	out := tui.NewOutput(w, output)

	vms, err := destroyer.List(ctx, prefix)
	if err != nil {
		return handleFleetError(output, w, err)
	}

	var targets []provider.VM
	voyageIDs := map[string]bool{}
	for _, vm := range vms {
		if strings.HasSuffix(vm.Name, "-storage") && !includeStorage {
			continue
		}
		targets = append(targets, vm)
		voyageIDs[voyageIDFromVMName(vm.Name)] = true
	}

	if len(targets) == 0 {
		out.Info("no matching VMs found")
		return nil
	}

	if !force {
		if !terminalCheck() {
			return handleFleetError(output, w, fmt.Errorf("cannot sink without --force: %w", voyageerr.ErrNonInteractiveMode))
		}
		confirmed, err := confirmSink(label, len(targets))
		if err != nil {
			return handleFleetError(output, w, fmt.Errorf("failed to get confirmation: %w", err))
		}
		if !confirmed {
			out.Info("sink canceled")
			return nil
		}
	}

	var failed []string
	for _, vm := range targets {
		if err := destroyer.Destroy(ctx, vm.Name); err != nil {
			failed = append(failed, vm.Name)
		}
	}

	for id := range voyageIDs {
		_ = terminator.TerminateVoyageSyncs(ctx, id)
	}

	if output == OutputJSON {
		if jsonErr := out.JSON(fleetResult{Voyage: label, Destroyed: vmNames(targets, failed), Failed: failed}); jsonErr != nil {
			return jsonErr
		}
	} else {
		out.Success(fmt.Sprintf("sunk %d of %d VM(s) for %s", len(targets)-len(failed), len(targets), label))
		for _, name := range failed {
			out.Warning(fmt.Sprintf("%s failed to destroy", name))
		}
	}

	if len(failed) > 0 {
		return voyageerr.NewExitCodeError(ExitPartialSuccess, fmt.Errorf("%d VM(s) failed to destroy", len(failed)))
	}
	return nil
}

// createSinkConfirmForm is the default factory for the sink confirmation
// prompt. Overridable in tests.
//
//nolint:gochecknoglobals // test injection point
var createSinkConfirmForm = defaultCreateSinkConfirmForm

func defaultCreateSinkConfirmForm(label string, vmCount int, confirm *bool) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Destroy %d VM(s) for %s?", vmCount, label)).
				Description("This cannot be undone.").
				Affirmative("Yes, destroy").
				Negative("No, cancel").
				Value(confirm),
		),
	)
}

func confirmSink(label string, vmCount int) (bool, error) {
	var confirm bool
	form := createSinkConfirmForm(label, vmCount, &confirm)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirm, nil
}

// handleFleetError prints a JSON error envelope when output is JSON,
// returning the sentinel that tells the caller to silence cobra's own
// error printing while still exiting non-zero; otherwise it returns err
// unchanged for cobra's default text rendering.
func handleFleetError(output string, w io.Writer, err error) error {
	if output == OutputJSON {
		out := tui.NewOutput(w, output)
		_ = out.JSON(fleetResult{Failed: []string{err.Error()}})
		return voyageerr.ErrJSONErrorOutput
	}
	return err
}

// voyageIDFromVMName recovers the voyage id from either naming
// convention produced by internal/domain.Voyage (StorageName,
// ShipName).
func voyageIDFromVMName(name string) string {
	if strings.HasSuffix(name, "-storage") {
		return strings.TrimSuffix(name, "-storage")
	}
	if idx := strings.Index(name, "-ship-"); idx >= 0 {
		return name[:idx]
	}
	return name
}

// vmNames returns the names of vms not present in excluded, preserving
// order.
func vmNames(vms []provider.VM, excluded []string) []string {
	excludeSet := make(map[string]bool, len(excluded))
	for _, n := range excluded {
		excludeSet[n] = true
	}
	names := make([]string, 0, len(vms))
	for _, vm := range vms {
		if !excludeSet[vm.Name] {
			names = append(names, vm.Name)
		}
	}
	return names
}
