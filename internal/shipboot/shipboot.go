// Package shipboot provisions and configures one ship VM (spec
// component C7): create the VM, mount the shared storage, write the
// ship's identity, install the idempotent stop hook, and start the
// agent runtime detached. Every step after VM creation runs over the
// same Remote Exec channel the rest of the control plane uses.
package shipboot

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/hooktemplate"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/remoteexec"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Remote is the Remote Exec capability shipboot needs against a ship's
// own SSH destination: run a command and upload a small file.
// internal/remoteexec.Client satisfies this directly.
type Remote interface {
	Run(ctx context.Context, sshDest, command string) (remoteexec.Result, error)
	Put(ctx context.Context, sshDest string, content io.Reader, remotePath string) error
}

// Deps are the collaborators shipboot needs; nil fields are a caller
// bug, not handled defensively.
type Deps struct {
	Provider         provider.Provider
	Remote           Remote
	WaitReadyTimeout time.Duration
	AgentCommand     string
}

// Outcome reports the result of bootstrapping one ship. Err is one of
// ProvisionFailed (surfaced as the Provider's own error),
// ErrMountFailed, or ErrAgentStartFailed; a nil Err means every step
// succeeded.
type Outcome struct {
	Index  int
	ShipID string
	VM     provider.VM
	Err    error
}

// Bootstrap runs the full C7 procedure for ship index within voyage,
// given the already-provisioned storage VM. It never returns an error
// itself: failures are reported on the returned Outcome so a caller
// fanning this out across many ships can continue past individual
// failures, per spec.md §4.7's "each failure mode is reported but does
// not abort the enclosing operation" policy.
func Bootstrap(ctx context.Context, deps Deps, voyage domain.Voyage, storage provider.VM, index int) Outcome {
	shipID := fmt.Sprintf("ship-%d", index)
	shipName := voyage.ShipName(index)

	vm, err := deps.Provider.Create(ctx, shipName)
	if err != nil {
		return Outcome{Index: index, ShipID: shipID, Err: err}
	}

	if err := deps.Provider.WaitReady(ctx, vm, deps.WaitReadyTimeout); err != nil {
		return Outcome{Index: index, ShipID: shipID, VM: vm, Err: err}
	}

	if err := mountSharedStorage(ctx, deps.Remote, vm.SSHDest, storage.SSHDest); err != nil {
		return Outcome{Index: index, ShipID: shipID, VM: vm, Err: err}
	}

	if err := writeIdentity(ctx, deps.Remote, vm.SSHDest, shipID, voyage, storage); err != nil {
		return Outcome{Index: index, ShipID: shipID, VM: vm, Err: err}
	}

	if err := installStopHook(ctx, deps.Remote, vm.SSHDest, shipID); err != nil {
		return Outcome{Index: index, ShipID: shipID, VM: vm, Err: err}
	}

	if err := startAgent(ctx, deps.Remote, vm.SSHDest, shipID, deps.AgentCommand); err != nil {
		return Outcome{Index: index, ShipID: shipID, VM: vm, Err: err}
	}

	return Outcome{Index: index, ShipID: shipID, VM: vm}
}

// mountSharedStorage mounts the storage VM's voyage root and task
// directory onto the ship via sshfs, with reconnect/keepalive options so
// a transient network blip does not strand the ship with a stale mount.
func mountSharedStorage(ctx context.Context, remote Remote, shipSSHDest, storageSSHDest string) error {
	cmd := strings.Join([]string{
		fmt.Sprintf("mkdir -p %s %s", constants.StorageRoot, constants.TasksDir),
		fmt.Sprintf("sshfs %s:%s %s -o %s", storageSSHDest, constants.StorageRoot, constants.StorageRoot, constants.MountOptions),
		fmt.Sprintf("sshfs %s:%s/%s %s -o %s", storageSSHDest, constants.StorageRoot, constants.TasksDir, constants.TasksDir, constants.MountOptions),
	}, " && ")

	result, err := remote.Run(ctx, shipSSHDest, cmd)
	if err != nil || result.ExitCode != 0 {
		return mountFailure(err, result)
	}
	return nil
}

func mountFailure(err error, result remoteexec.Result) error {
	if err != nil {
		return fmt.Errorf("%w: %w", voyageerr.ErrMountFailed, err)
	}
	return fmt.Errorf("%w: %s", voyageerr.ErrMountFailed, strings.TrimSpace(result.Stderr))
}

// writeIdentity writes the ship's identity file: which ship it is,
// which voyage it belongs to, and how to reach the storage VM, so the
// agent runtime (an external collaborator) can discover its context
// without depending on the control plane staying reachable.
func writeIdentity(ctx context.Context, remote Remote, shipSSHDest, shipID string, voyage domain.Voyage, storage provider.VM) error {
	mkdir, err := remote.Run(ctx, shipSSHDest, "mkdir -p "+constants.ShipConfigDir)
	if err != nil || mkdir.ExitCode != 0 {
		return mountFailure(err, mkdir)
	}

	identity := fmt.Sprintf("ship_id=%s\nvoyage_id=%s\nstorage_ssh_dest=%s\n", shipID, voyage.ID, storage.SSHDest)
	path := constants.ShipConfigDir + "/identity"
	if err := remote.Put(ctx, shipSSHDest, strings.NewReader(identity), path); err != nil {
		return fmt.Errorf("%w: write identity file: %w", voyageerr.ErrMountFailed, err)
	}
	return nil
}

// installStopHook renders and installs the idempotent stop hook script
// that commits dirty work and appends a progress line when the agent
// runtime terminates. hooktemplate.IsVoyagerHook is not consulted here:
// Put always overwrites, which is itself the idempotent behavior the
// hook's content only needs to preserve once running, not at install
// time.
func installStopHook(ctx context.Context, remote Remote, shipSSHDest, shipID string) error {
	mkdir, err := remote.Run(ctx, shipSSHDest, "mkdir -p "+constants.ShipHooksDir)
	if err != nil || mkdir.ExitCode != 0 {
		return mountFailure(err, mkdir)
	}

	workspaceDir := constants.StorageRoot + "/" + constants.WorkspaceDir
	progressFile := constants.StorageRoot + "/" + constants.ArtifactsDir + "/" + constants.ProgressArtifactFile
	script := hooktemplate.RenderStopHook(shipID, workspaceDir, progressFile)

	hookPath := constants.ShipHooksDir + "/" + constants.StopHookFile
	if err := remote.Put(ctx, shipSSHDest, strings.NewReader(script), hookPath); err != nil {
		return fmt.Errorf("%w: install stop hook: %w", voyageerr.ErrMountFailed, err)
	}

	chmod, err := remote.Run(ctx, shipSSHDest, "chmod +x "+hookPath)
	if err != nil || chmod.ExitCode != 0 {
		return mountFailure(err, chmod)
	}
	return nil
}

// startAgent launches agentCommand detached so it survives the Remote
// Exec session closing, redirecting its output to the ship's log file
// under the shared voyage root.
func startAgent(ctx context.Context, remote Remote, shipSSHDest, shipID, agentCommand string) error {
	if agentCommand == "" {
		agentCommand = constants.DefaultAgentCommand
	}

	logPath := fmt.Sprintf("%s/%s/%s-%s.log", constants.StorageRoot, constants.LogsDir, "ship", strings.TrimPrefix(shipID, "ship-"))
	cmd := fmt.Sprintf("nohup %s --tasks %s --workspace %s/%s > %s 2>&1 < /dev/null &", agentCommand, constants.TasksDir, constants.StorageRoot, constants.WorkspaceDir, logPath)

	result, err := remote.Run(ctx, shipSSHDest, cmd)
	if err != nil {
		return fmt.Errorf("%w: %w", voyageerr.ErrAgentStartFailed, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: %s", voyageerr.ErrAgentStartFailed, strings.TrimSpace(result.Stderr))
	}
	return nil
}
