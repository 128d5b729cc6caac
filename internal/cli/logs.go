// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/remoteexec"
	"github.com/oceanvoyage/voyager/internal/tui"
)

// logRunner is the capability runLogsWithDeps needs against the storage
// VM where every ship's agent redirects its output. remoteexec.Client
// satisfies this.
type logRunner interface {
	Run(ctx context.Context, sshDest, command string) (remoteexec.Result, error)
	Stream(ctx context.Context, sshDest, command string, onLine func(line string)) error
}

// AddLogsCommand adds the logs command to the root command.
func AddLogsCommand(parent *cobra.Command) {
	var voyageID string
	var shipID string
	var follow bool
	var grep string
	var tail int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show ship agent logs",
		Long: `Print or follow agent logs as captured on the shared storage VM
since they're written there by each ship's own output redirect. With
--ship, target that ship's log only; otherwise every ship's log is
aggregated.

Examples:
  voyager logs --ship ship-0
  voyager logs --ship ship-0 --follow
  voyager logs --grep ERROR --tail 500`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), cmd, os.Stdout, voyageID, shipID, follow, grep, tail)
		},
	}

	cmd.Flags().StringVar(&voyageID, "voyage", "", "voyage id (auto-detected if exactly one voyage is in flight)")
	cmd.Flags().StringVar(&shipID, "ship", "", "ship id to show logs for (all ships if omitted)")
	cmd.Flags().BoolVar(&follow, "follow", false, "stream new log lines as they are written")
	cmd.Flags().StringVar(&grep, "grep", "", "only show lines matching this pattern")
	cmd.Flags().IntVar(&tail, "tail", 200, "number of trailing lines to show")
	parent.AddCommand(cmd)
}

func runLogs(ctx context.Context, cmd *cobra.Command, w io.Writer, voyageID, shipID string, follow bool, grep string, tail int) error {
	tui.CheckNoColor()

	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	storage, err := resolveStorage(ctx, rt.provider, voyageID)
	if err != nil {
		return err
	}

	return runLogsWithDeps(ctx, w, rt.remote, storage, shipID, follow, grep, tail)
}

func runLogsWithDeps(ctx context.Context, w io.Writer, remote logRunner, storage provider.VM, shipID string, follow bool, grep string, tail int) error {
	path := logTargetPath(shipID)
	command := "tail -n " + strconv.Itoa(tail)
	if follow {
		command += " -f"
	}
	command += " " + path
	if grep != "" {
		command += " | grep " + shellQuoteLog(grep)
	}

	if follow {
		return remote.Stream(ctx, storage.SSHDest, command, func(line string) {
			fmt.Fprintln(w, line)
		})
	}

	result, err := remote.Run(ctx, storage.SSHDest, command)
	if err != nil {
		return err
	}
	fmt.Fprint(w, result.Stdout)
	return nil
}

// logTargetPath returns the path, on the storage VM, to tail: shipID's
// single agent log if given (matching the path internal/shipboot's
// startAgent redirects into), or a glob over every ship's log
// otherwise.
func logTargetPath(shipID string) string {
	if shipID == "" {
		return fmt.Sprintf("%s/%s/*.log", constants.StorageRoot, constants.LogsDir)
	}
	return shellQuoteLog(shipLogPath(shipID))
}

// shipLogPath returns the path, on the storage VM, to shipID's agent
// log, matching the path internal/shipboot's startAgent redirects into.
func shipLogPath(shipID string) string {
	index := strings.TrimPrefix(shipID, "ship-")
	return fmt.Sprintf("%s/%s/ship-%s.log", constants.StorageRoot, constants.LogsDir, index)
}

func shellQuoteLog(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
