// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/taskset"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// taskResetter is the capability runResetTaskWithDeps needs: clear a
// claim and return the task to pending. internal/taskset.FileStore
// satisfies this alongside taskLister.
type taskResetter interface {
	taskLister
	ResetTask(ctx context.Context, root, taskID string, now time.Time) (domain.Task, error)
}

// AddResetTaskCommand adds the reset-task command to the root command.
func AddResetTaskCommand(parent *cobra.Command) {
	var voyageID string
	var allStale bool

	cmd := &cobra.Command{
		Use:   "reset-task [task_id]",
		Short: "Return a stale or stuck task to pending",
		Long: `Clear a task's claim, returning it to pending so a fresh ship can
pick it up. Completion history is preserved: reset only undoes an
in-progress claim.

Examples:
  voyager reset-task task-0042
  voyager reset-task --all-stale`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := ""
			if len(args) == 1 {
				taskID = args[0]
			}
			return runResetTask(cmd.Context(), cmd, os.Stdout, voyageID, taskID, allStale)
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	cmd.Flags().BoolVar(&allStale, "all-stale", false, "reset every task currently derived as stale")
	parent.AddCommand(cmd)
}

func runResetTask(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID, taskID string, allStale bool) error {
	if !allStale && taskID == "" {
		return fmt.Errorf("%w: provide a task id or --all-stale", voyageerr.ErrInvalidArgument)
	}
	if allStale && taskID != "" {
		return fmt.Errorf("%w: task id and --all-stale are mutually exclusive", voyageerr.ErrInvalidArgument)
	}

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

	return runResetTaskWithDeps(ctx, w, output, taskset.NewFileStore(), root, taskID, allStale, time.Now(), rt.cfg.StaleThreshold())
}

func runResetTaskWithDeps(ctx context.Context, w io.Writer, output string, store taskResetter, root, taskID string, allStale bool, now time.Time, staleThreshold time.Duration) error {
	out := tui.NewOutput(w, output)

	ids := []string{taskID}
	if allStale {
		ids = staleTaskIDs(ctx, store, root, now, staleThreshold)
	}

	if len(ids) == 0 {
		out.Info("no stale tasks to reset")
		return nil
	}

	reset := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		task, err := store.ResetTask(ctx, root, id, now)
		if err != nil {
			out.Error(err)
			return err
		}
		reset = append(reset, task)
	}

	if output == OutputJSON {
		return out.JSON(reset)
	}
	for _, task := range reset {
		out.Success(fmt.Sprintf("%s reset to pending", task.ID))
	}
	return nil
}

func staleTaskIDs(ctx context.Context, store taskLister, root string, now time.Time, staleThreshold time.Duration) []string {
	tasks, err := store.ListTasks(ctx, root)
	if err != nil {
		return nil
	}
	if staleThreshold <= 0 {
		staleThreshold = domain.DefaultStaleThreshold
	}
	var ids []string
	for _, t := range tasks {
		if t.Status == domain.TaskStatusInProgress && domain.IsStale(t.Metadata.ClaimedAt, now, staleThreshold) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
