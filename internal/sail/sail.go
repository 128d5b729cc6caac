// Package sail implements the Launcher (spec component C6): build a new
// voyage from a plan directory and launch it. It is also home to Resume,
// which fills gaps in an existing voyage's fleet, since both operations
// share the same ship-bootstrap fan-out.
package sail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oceanvoyage/voyager/internal/clock"
	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/ctxutil"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/gitutil"
	"github.com/oceanvoyage/voyager/internal/plan"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/remoteexec"
	"github.com/oceanvoyage/voyager/internal/shipboot"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Remote is the Remote Exec capability sail needs against the storage VM:
// run a command and upload a file. internal/remoteexec.Client satisfies
// this directly.
type Remote interface {
	Run(ctx context.Context, sshDest, command string) (remoteexec.Result, error)
	Put(ctx context.Context, sshDest string, content io.Reader, remotePath string) error
}

// Deps are the collaborators Launch and Resume need.
type Deps struct {
	Provider         provider.Provider
	Remote           Remote
	Clock            clock.Clock
	WaitReadyTimeout time.Duration
	AgentCommand     string
}

// Report is the outcome of Launch or Resume: the voyage descriptor (for
// Launch; zero-valued for a Resume against an existing voyage) plus one
// Outcome per ship index attempted.
type Report struct {
	Voyage  domain.Voyage
	Storage provider.VM
	Ships   []shipboot.Outcome
}

// Launch runs the full sail procedure: construct the voyage, provision
// storage, seed the repository, publish artifacts, and bootstrap ships.
// Ship bootstrap failures are collected onto the report rather than
// aborting: sail succeeds once storage exists, even with zero ships
// launched, since the caller can always run resume to fill gaps.
func Launch(ctx context.Context, deps Deps, p plan.Plan, shipCountOverride int) (Report, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return Report{}, err
	}

	shipCount := resolveShipCount(shipCountOverride, p.RecommendedShips)
	voyage, err := domain.NewVoyage(p.Objective, p.Repo, shipCount, deps.Clock.Now())
	if err != nil {
		return Report{}, fmt.Errorf("construct voyage: %w", err)
	}

	storage, err := provisionStorage(ctx, deps, voyage)
	if err != nil {
		return Report{}, err
	}

	if err := initializeStorageLayout(ctx, deps.Remote, storage.SSHDest); err != nil {
		return Report{}, fmt.Errorf("%w: initialize storage layout: %w", voyageerr.ErrStorageProvisionFailed, err)
	}

	workspaceDir := constants.StorageRoot + "/" + constants.WorkspaceDir
	if err := gitutil.SeedRepository(ctx, deps.Remote, storage.SSHDest, voyage.Repo, workspaceDir, voyage.Branch); err != nil {
		return Report{}, err
	}

	if err := publishArtifacts(ctx, deps.Remote, storage.SSHDest, voyage, p); err != nil {
		return Report{}, err
	}

	outcomes := bootstrapShips(ctx, deps, voyage, storage, 0, shipCount)
	return Report{Voyage: voyage, Storage: storage, Ships: outcomes}, nil
}

// Resume determines the highest ship index already observed for voyage,
// across both the provider's VM list and tasks' assignee/completed_by
// metadata, and bootstraps the next count indices. Both sources matter:
// a ship can appear in the VM list before it ever claims a task, and a
// ship that failed bootstrap after its identity file was written but
// whose VM was later destroyed can still be referenced by historic task
// metadata.
func Resume(ctx context.Context, deps Deps, voyage domain.Voyage, storage provider.VM, tasks []domain.Task, count int) (Report, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return Report{}, err
	}

	next, err := nextShipIndex(ctx, deps.Provider, voyage, tasks)
	if err != nil {
		return Report{}, err
	}
	outcomes := bootstrapShips(ctx, deps, voyage, storage, next, next+count)
	return Report{Voyage: voyage, Storage: storage, Ships: outcomes}, nil
}

func resolveShipCount(override, recommended int) int {
	if override > 0 {
		return override
	}
	if recommended > 0 {
		return recommended
	}
	return constants.DefaultShips
}

func provisionStorage(ctx context.Context, deps Deps, voyage domain.Voyage) (provider.VM, error) {
	vm, err := deps.Provider.Create(ctx, voyage.StorageName())
	if err != nil {
		return provider.VM{}, fmt.Errorf("%w: %w", voyageerr.ErrStorageProvisionFailed, err)
	}
	if err := deps.Provider.WaitReady(ctx, vm, deps.WaitReadyTimeout); err != nil {
		return provider.VM{}, fmt.Errorf("%w: %w", voyageerr.ErrStorageProvisionFailed, err)
	}
	return vm, nil
}

// initializeStorageLayout creates the directory tree every other
// component assumes already exists: workspace, artifacts, logs, and the
// task set.
func initializeStorageLayout(ctx context.Context, remote Remote, storageSSHDest string) error {
	dirs := []string{
		constants.WorkspaceDir,
		constants.ArtifactsDir,
		constants.LogsDir,
		constants.TasksDir,
	}
	cmd := "mkdir -p " + strings.Join(dirs, " ")
	result, err := remote.Run(ctx, storageSSHDest, cmd)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("mkdir storage layout: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// publishArtifacts writes the voyage descriptor, the plan spec, the
// verify script (executable bit set), and every task file. Task ids and
// metadata are preserved verbatim except that each task's voyage
// metadata key is stamped with this voyage's id.
func publishArtifacts(ctx context.Context, remote Remote, storageSSHDest string, voyage domain.Voyage, p plan.Plan) error {
	descriptor, err := voyage.MarshalCanonicalJSON()
	if err != nil {
		return fmt.Errorf("marshal voyage descriptor: %w", err)
	}
	if err := remote.Put(ctx, storageSSHDest, strings.NewReader(string(descriptor)), constants.VoyageDescriptorFile); err != nil {
		return fmt.Errorf("publish voyage descriptor: %w", err)
	}

	specPath := constants.ArtifactsDir + "/" + constants.SpecArtifactFile
	if err := remote.Put(ctx, storageSSHDest, strings.NewReader(string(p.Spec)), specPath); err != nil {
		return fmt.Errorf("publish spec: %w", err)
	}

	verifyPath := constants.ArtifactsDir + "/" + constants.VerifyArtifactFile
	if err := remote.Put(ctx, storageSSHDest, strings.NewReader(string(p.Verify)), verifyPath); err != nil {
		return fmt.Errorf("publish verify script: %w", err)
	}
	chmod, err := remote.Run(ctx, storageSSHDest, "chmod +x "+verifyPath)
	if err != nil || chmod.ExitCode != 0 {
		return fmt.Errorf("mark verify script executable: %w", err)
	}

	for _, task := range p.Tasks {
		task.Metadata.Extra = stampVoyageID(task.Metadata.Extra, voyage.ID)
		data, err := json.MarshalIndent(task, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal task %s: %w", task.ID, err)
		}
		path := constants.TasksDir + "/" + task.ID + ".json"
		if err := remote.Put(ctx, storageSSHDest, strings.NewReader(string(data)), path); err != nil {
			return fmt.Errorf("publish task %s: %w", task.ID, err)
		}
	}
	return nil
}

// stampVoyageID records which voyage published a task without disturbing
// any other preserved unknown metadata key.
func stampVoyageID(extra map[string]json.RawMessage, voyageID string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	out["voyage"], _ = json.Marshal(voyageID)
	return out
}

func bootstrapShips(ctx context.Context, deps Deps, voyage domain.Voyage, storage provider.VM, from, to int) []shipboot.Outcome {
	outcomes := make([]shipboot.Outcome, to-from)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(to - from)

	shipDeps := shipboot.Deps{
		Provider:         deps.Provider,
		Remote:           deps.Remote,
		WaitReadyTimeout: deps.WaitReadyTimeout,
		AgentCommand:     deps.AgentCommand,
	}

	for offset := 0; offset < to-from; offset++ {
		index := from + offset
		slot := offset
		group.Go(func() error {
			outcomes[slot] = shipboot.Bootstrap(groupCtx, shipDeps, voyage, storage, index)
			return nil // per-ship failures are reported on Outcome, never abort the fan-out
		})
	}
	_ = group.Wait() // every goroutine above always returns nil
	return outcomes
}

// nextShipIndex inspects both the provider's VM list for voyage's ship
// VMs and tasks' assignee/completed_by metadata for ship ids, and
// returns one past the highest index found across either source, or 0
// if none exist yet.
func nextShipIndex(ctx context.Context, prov provider.Provider, voyage domain.Voyage, tasks []domain.Task) (int, error) {
	prefix := voyage.ID + "-ship-"
	vms, err := prov.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("list ship VMs: %w", err)
	}

	highest := -1
	for _, vm := range vms {
		suffix := strings.TrimPrefix(vm.Name, prefix)
		if index, err := strconv.Atoi(suffix); err == nil && index > highest {
			highest = index
		}
	}

	for _, task := range tasks {
		for _, shipID := range []string{task.Metadata.Assignee, task.Metadata.CompletedBy} {
			if index, ok := shipIndexFromID(shipID); ok && index > highest {
				highest = index
			}
		}
	}

	return highest + 1, nil
}

// shipIndexFromID parses the numeric index out of a ship id of the form
// "ship-<index>", the short form ships use to identify themselves in
// task metadata (as opposed to the VM-naming convention's
// "<voyage-id>-ship-<index>").
func shipIndexFromID(shipID string) (int, bool) {
	suffix, ok := strings.CutPrefix(shipID, "ship-")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return index, true
}
