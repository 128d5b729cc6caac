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
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/sail"
	"github.com/oceanvoyage/voyager/internal/taskset"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// resumer is the capability runResumeWithResumer needs: bootstrap count
// new ships for an already-sailing voyage. internal/sail's Resume
// function, bound to its Deps, satisfies this via resumeDeps.Resume.
type resumer interface {
	Resume(ctx context.Context, voyage domain.Voyage, storage provider.VM, tasks []domain.Task, count int) (sail.Report, error)
}

type resumeDeps struct {
	deps sail.Deps
}

func (d resumeDeps) Resume(ctx context.Context, voyage domain.Voyage, storage provider.VM, tasks []domain.Task, count int) (sail.Report, error) {
	return sail.Resume(ctx, d.deps, voyage, storage, tasks, count)
}

// AddResumeCommand adds the resume command to the root command.
func AddResumeCommand(parent *cobra.Command) {
	var voyageID string
	var ships int

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Bootstrap additional ships for an in-flight voyage",
		Long: `Determine the highest ship index already observed for a voyage and
bootstrap the next --ships indices past it, filling gaps left by a
previous sail or resume's partial failures.

Examples:
  voyager resume --ships 2
  voyager resume --voyage voyage-abc123 --ships 1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResume(cmd.Context(), cmd, os.Stdout, voyageID, ships)
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	cmd.Flags().IntVar(&ships, "ships", 1, "number of additional ships to bootstrap")
	parent.AddCommand(cmd)
}

func runResume(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID string, ships int) error {
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
	voyage, err := loadVoyage(ctx, rt.remote, storage)
	if err != nil {
		return err
	}

	root, err := syncTaskRoot(ctx, voyage, storage)
	if err != nil {
		return err
	}
	tasks, err := taskset.NewFileStore().ListTasks(ctx, root)
	if err != nil {
		return err
	}

	deps := resumeDeps{deps: sail.Deps{
		Provider:         rt.provider,
		Remote:           rt.remote,
		Clock:            clock.RealClock{},
		WaitReadyTimeout: rt.cfg.Remote.WaitReadyTimeout,
		AgentCommand:     rt.cfg.AgentCommand,
	}}

	return runResumeWithResumer(ctx, w, output, deps, voyage, storage, tasks, ships)
}

func runResumeWithResumer(ctx context.Context, w io.Writer, output string, r resumer, voyage domain.Voyage, storage provider.VM, tasks []domain.Task, ships int) error {
	out := tui.NewOutput(w, output)

	report, err := r.Resume(ctx, voyage, storage, tasks, ships)
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
		out.Success(fmt.Sprintf("voyage %s resumed, %d ship(s) bootstrapped", voyage.ID, len(report.Ships)))
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
