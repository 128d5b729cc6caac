// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/taskset"
	"github.com/oceanvoyage/voyager/internal/tui"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// AddTasksCommand adds the tasks command to the root command.
func AddTasksCommand(parent *cobra.Command) {
	var voyageID string
	var status string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks in a voyage's shared task set",
		Long: `List every task tracked for a voyage, optionally filtered to a
single lifecycle status.

Examples:
  voyager tasks
  voyager tasks --status in_progress
  voyager tasks --voyage voyage-abc123 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTasks(cmd.Context(), cmd, os.Stdout, voyageID, status)
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|in_progress|complete)")
	parent.AddCommand(cmd)
}

func runTasks(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID, status string) error {
	if status != "" && !domain.TaskStatus(status).Valid() {
		return fmt.Errorf("%w: status %q", voyageerr.ErrInvalidArgument, status)
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

	return runTasksWithDeps(ctx, w, output, taskset.NewFileStore(), root, status)
}

func runTasksWithDeps(ctx context.Context, w io.Writer, output string, store taskLister, root, status string) error {
	tasks, err := store.ListTasks(ctx, root)
	if err != nil {
		return err
	}

	if status != "" {
		tasks = filterTasksByStatus(tasks, domain.TaskStatus(status))
	}

	out := tui.NewOutput(w, output)
	if output == OutputJSON {
		return out.JSON(tasks)
	}

	headers := []string{"ID", "STATUS", "ASSIGNEE", "TITLE"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, string(t.Status), t.Metadata.Assignee, t.Title})
	}
	out.Table(headers, rows)
	out.Info(fmt.Sprintf("%d task(s)", len(tasks)))
	return nil
}

func filterTasksByStatus(tasks []domain.Task, status domain.TaskStatus) []domain.Task {
	filtered := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return filtered
}
