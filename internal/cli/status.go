// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/taskset"
	"github.com/oceanvoyage/voyager/internal/tui"
)

// taskLister is the capability runStatusWithDeps needs: enumerate every
// task under a task set root. internal/taskset.FileStore satisfies this.
type taskLister interface {
	ListTasks(ctx context.Context, root string) ([]domain.Task, error)
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(parent *cobra.Command) {
	var voyageID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-ship and aggregate voyage status",
		Long: `Derive and display the current state of every ship in a voyage's
fleet, purely from the shared task set: which ship is working, which is
stale and needs a reset, and which has gone idle.

Examples:
  voyager status
  voyager status --voyage voyage-abc123 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, os.Stdout, voyageID)
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	parent.AddCommand(cmd)
}

func runStatus(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID string) error {
	output := cmd.Flag("output").Value.String()
	quiet := cmd.Flag("quiet").Value.String() == "true"
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

	return runStatusWithDeps(ctx, w, output, quiet, taskset.NewFileStore(), root, time.Now(), rt.cfg.StaleThreshold())
}

func runStatusWithDeps(ctx context.Context, w io.Writer, output string, quiet bool, store taskLister, root string, now time.Time, staleThreshold time.Duration) error {
	tasks, err := store.ListTasks(ctx, root)
	if err != nil {
		return err
	}

	status := domain.Derive(tasks, now, staleThreshold)
	rows := statusRows(status, now)

	out := tui.NewOutput(w, output)
	if output == OutputJSON {
		return out.JSON(struct {
			VoyageState   domain.VoyageState `json:"voyage_state"`
			Ships         []tui.StatusRow    `json:"ships"`
			TotalTasks    int                `json:"total_tasks"`
			PendingCount  int                `json:"pending_count"`
			RunningCount  int                `json:"running_count"`
			CompleteCount int                `json:"complete_count"`
			StaleCount    int                `json:"stale_count"`
			DataFaults    []string           `json:"data_faults,omitempty"`
		}{
			VoyageState:   status.VoyageState,
			Ships:         rows,
			TotalTasks:    status.TotalTasks,
			PendingCount:  status.PendingCount,
			RunningCount:  status.RunningCount,
			CompleteCount: status.CompleteCount,
			StaleCount:    status.StaleCount,
			DataFaults:    status.DataFaults,
		})
	}

	table := tui.NewStatusTable(rows)
	if !quiet {
		out.Info("voyage state: " + string(status.VoyageState))
	}
	if err := table.Render(w); err != nil {
		return err
	}
	for _, fault := range status.DataFaults {
		out.Warning(fault)
	}
	return nil
}

// statusRows converts the deriver's map of ship statuses into a sorted
// slice: attention-requiring ships (stale) first, then working ships, then
// the rest, each group ordered alphabetically by ship id.
func statusRows(status domain.VoyageStatus, now time.Time) []tui.StatusRow {
	rows := make([]tui.StatusRow, 0, len(status.Ships))
	for _, ship := range status.Ships {
		claimedFor := ""
		if ship.ClaimedAt != nil {
			claimedFor = tui.RelativeTimeWith(*ship.ClaimedAt, stoppedClock{now})
		}
		rows = append(rows, tui.StatusRow{
			Ship:           ship.ID,
			State:          ship.State,
			CurrentTask:    ship.CurrentTask,
			ClaimedFor:     claimedFor,
			CompletedCount: ship.CompletedCount,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rowPriority(rows[i].State), rowPriority(rows[j].State)
		if pi != pj {
			return pi > pj
		}
		return rows[i].Ship < rows[j].Ship
	})
	return rows
}

func rowPriority(state domain.ShipState) int {
	if tui.IsAttentionState(state) {
		return 2
	}
	if state == domain.ShipStateWorking {
		return 1
	}
	return 0
}

// stoppedClock lets statusRows reuse tui.RelativeTimeWith (which wants a
// clock.Clock) against a single fixed instant without depending on wall
// time twice within one render.
type stoppedClock struct{ now time.Time }

func (c stoppedClock) Now() time.Time { return c.now }
