// Package localsync manages the operator's local mirror of a voyage's
// storage root. Fleet Operations (status, tasks, reset-task) and Sail's
// artifact-publishing step need ordinary filesystem access to task
// files; localsync keeps a local directory two-way synced against the
// storage VM via the Mutagen CLI so internal/taskset.FileStore can
// operate on a plain local path instead of every read needing its own
// remote round trip.
package localsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// SessionName returns the deterministic Mutagen session name for a
// voyage, so CreateSync/TerminateSync/TerminateVoyageSyncs all agree on
// naming without threading a name through every caller.
func SessionName(voyageID string) string {
	return voyageID + "-storage-sync"
}

// CreateSync starts a two-way Mutagen sync session between localDir and
// storageSSHDest's StorageRoot directory. Safe to call again for a
// session that already exists: Mutagen itself reports that as an error,
// which CreateSync treats as success (idempotent, matching the
// destructive-operation-safety requirement for sail/resume retries).
func CreateSync(ctx context.Context, localDir, storageSSHDest, voyageID string) error {
	sessionName := SessionName(voyageID)
	args := []string{
		"sync", "create",
		localDir,
		storageSSHDest + ":" + constants.StorageRoot,
		"--name=" + sessionName,
		"--sync-mode=two-way-resolved",
		"--ignore-vcs",
	}

	_, stderr, err := run(ctx, args...)
	if err != nil {
		if strings.Contains(stderr, "already exists") {
			return nil
		}
		return fmt.Errorf("%w: create sync session %s: %s", voyageerr.ErrConnectError, sessionName, strings.TrimSpace(stderr))
	}
	return nil
}

// TerminateSync tears down a single named sync session. Terminating a
// session that does not exist is not an error.
func TerminateSync(ctx context.Context, sessionName string) error {
	_, _, _ = run(ctx, "sync", "terminate", sessionName) //nolint:errcheck // idempotent teardown, absence is success
	return nil
}

// TerminateVoyageSyncs tears down every sync session whose name carries
// voyageID, used by sink/abandon to leave no dangling local mirrors
// behind after destroying a voyage's VMs.
func TerminateVoyageSyncs(ctx context.Context, voyageID string) error {
	stdout, _, err := run(ctx, "sync", "list")
	if err != nil {
		return fmt.Errorf("%w: list sync sessions: %w", voyageerr.ErrConnectError, err)
	}

	for _, line := range strings.Split(stdout, "\n") {
		if !strings.Contains(line, voyageID) || !strings.Contains(line, "Name:") {
			continue
		}
		name := strings.TrimSpace(strings.SplitN(line, "Name:", 2)[1])
		if err := TerminateSync(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, "mutagen", args...) //#nosec G204 -- args are constructed internally, not user input

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	if runErr != nil && ctx.Err() != nil {
		return "", "", ctx.Err()
	}
	return outBuf.String(), errBuf.String(), runErr
}
