// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/clock"
	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/plan"
	"github.com/oceanvoyage/voyager/internal/sail"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// launcher is the capability runSailWithLauncher needs: run the full sail
// procedure and report one outcome per ship attempted. internal/sail's
// Launch function, bound to its Deps, satisfies this via sailDeps.Launch.
type launcher interface {
	Launch(ctx context.Context, p plan.Plan, shipCountOverride int) (sail.Report, error)
}

// sailDeps adapts sail.Launch (a package function taking an explicit Deps
// argument) to the launcher interface, so tests can substitute a fake.
type sailDeps struct {
	deps sail.Deps
}

func (d sailDeps) Launch(ctx context.Context, p plan.Plan, shipCountOverride int) (sail.Report, error) {
	return sail.Launch(ctx, d.deps, p, shipCountOverride)
}

// AddSailCommand adds the sail command to the root command.
func AddSailCommand(parent *cobra.Command) {
	var ships int

	cmd := &cobra.Command{
		Use:   "sail <plan-dir>",
		Short: "Launch a new voyage from a plan directory",
		Long: `Construct a voyage, provision shared storage, seed the upstream
repository, publish the plan's spec/verify/tasks artifacts, and bootstrap
the requested number of ship VMs.

A ship that fails to bootstrap does not abort the voyage: the storage VM
and every other ship are left running, and 'voyager resume' can fill the
gap later.

Examples:
  voyager sail ./plan
  voyager sail ./plan --ships 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSail(cmd.Context(), cmd, os.Stdout, args[0], ships)
		},
	}

	cmd.Flags().IntVar(&ships, "ships", 0, "number of ships to launch (defaults to the plan's recommendation, then configuration)")
	parent.AddCommand(cmd)
}

func runSail(ctx context.Context, cmd *cobra.Command, w io.Writer, planDir string, ships int) error {
	output := cmd.Flag("output").Value.String()
	tui.CheckNoColor()

	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	p, err := plan.Load(planDir)
	if err != nil {
		return err
	}

	deps := sailDeps{deps: sail.Deps{
		Provider:         rt.provider,
		Remote:           rt.remote,
		Clock:            clock.RealClock{},
		WaitReadyTimeout: rt.cfg.Remote.WaitReadyTimeout,
		AgentCommand:     rt.cfg.AgentCommand,
	}}

	return runSailWithLauncher(ctx, w, output, deps, p, ships)
}

func runSailWithLauncher(ctx context.Context, w io.Writer, output string, l launcher, p plan.Plan, ships int) error {
	out := tui.NewOutput(w, output)

	report, err := l.Launch(ctx, p, ships)
	if err != nil {
		out.Error(err)
		return err
	}

	failures := countShipFailures(report)
	if output == OutputJSON {
		if jsonErr := out.JSON(report); jsonErr != nil {
			return jsonErr
		}
	} else {
		out.Success(fmt.Sprintf("voyage %s launched with %d ship(s)", report.Voyage.ID, len(report.Ships)))
		for _, outcome := range report.Ships {
			if outcome.Err != nil {
				out.Warning(fmt.Sprintf("%s failed to bootstrap: %s", outcome.ShipID, outcome.Err))
			} else {
				out.Info(fmt.Sprintf("%s ready", outcome.ShipID))
			}
		}
	}

	if failures > 0 {
		return voyageerr.NewExitCodeError(ExitPartialSuccess,
			fmt.Errorf("%d of %d ships failed to bootstrap", failures, len(report.Ships)))
	}
	return nil
}

func countShipFailures(report sail.Report) int {
	count := 0
	for _, outcome := range report.Ships {
		if outcome.Err != nil {
			count++
		}
	}
	return count
}
