// Package constants provides centralized constant values used throughout
// voyager. This package is the single source of truth for shared
// constants and MUST NOT import any other internal package.
package constants

import "time"

// Storage VM layout, written by sail and read by every other command.
const (
	// StorageRoot is the top-level directory on the storage VM, relative
	// to its user's home, holding every other storage path below. Ships
	// and the CLI's own local mirror both sync against this one root.
	StorageRoot = "voyage"

	// VoyageDescriptorFile is the immutable voyage descriptor artifact.
	VoyageDescriptorFile = "voyage.json"

	// TasksDir holds one task file per task, the well-known directory
	// the Task Store Adapter (C4) reads and writes.
	TasksDir = "tasks"

	// ArtifactsDir holds the plan spec, the verify script, and the
	// append-only progress narrative.
	ArtifactsDir = "artifacts"

	// SpecArtifactFile is the plan's spec document, copied verbatim.
	SpecArtifactFile = "spec.md"

	// VerifyArtifactFile is the plan's verify script, copied with the
	// executable bit set.
	VerifyArtifactFile = "verify.sh"

	// ProgressArtifactFile is the append-only narrative log.
	ProgressArtifactFile = "progress.txt"

	// WorkspaceDir is the git checkout of the seeded repository.
	WorkspaceDir = "workspace"

	// LogsDir holds one log file per ship.
	LogsDir = "logs"
)

// Plan directory layout, the local input to sail.
const (
	// PlanSpecFile is the plan directory's human spec document.
	PlanSpecFile = "spec.md"

	// PlanVerifyFile is the plan directory's verify script.
	PlanVerifyFile = "verify.sh"

	// PlanVoyageFile describes recommended ship count and repo.
	PlanVoyageFile = "voyage.json"

	// PlanTasksDir holds one pre-authored task file per task.
	PlanTasksDir = "tasks"
)

// Ship-local layout.
const (
	// ShipConfigDir holds the ship's identity files.
	ShipConfigDir = ".voyager"

	// ShipHooksDir holds the installed stop hook.
	ShipHooksDir = ".voyager/hooks"

	// StopHookFile is the idempotent stop hook script name.
	StopHookFile = "on-stop.sh"
)

// Defaults, overridable via environment or config file.
const (
	// DefaultShips is used when neither the plan nor an override
	// specifies a ship count.
	DefaultShips = 3

	// DefaultStaleThresholdMinutes is the deriver's default staleness
	// window.
	DefaultStaleThresholdMinutes = 30

	// DefaultWaitReadyTimeout bounds how long Provider.WaitReady blocks.
	DefaultWaitReadyTimeout = 5 * time.Minute

	// DefaultCommandTimeout bounds a single Remote Exec command.
	DefaultCommandTimeout = 60 * time.Second

	// MountOptions is appended to the shared-filesystem mount request
	// issued during ship bootstrap.
	MountOptions = "reconnect,ServerAliveInterval=15,ServerAliveCountMax=3"

	// DefaultAgentCommand is the detached process started on each ship
	// when no agent_command override is configured. It is a placeholder:
	// the actual agent runtime binary is an external collaborator (out
	// of scope per spec.md §1), so this only needs to be something that
	// will start, read its task set, and exit.
	DefaultAgentCommand = "voyager-agent"
)

// Retry policy values for idempotent remote transport operations (list,
// read, destroy). No code in this repository reads them: remote operations
// are attempted once and their transport errors are returned unretried.
const (
	MaxRetryAttempts = 3
	InitialBackoff   = 1 * time.Second
)

// VoyagerHome is the default CLI-local state directory, ~/.voyager-cli,
// distinct from the storage VM layout above: it holds only the CLI's
// own rotating log file, never voyage state.
const VoyagerHome = ".voyager-cli"

// CLI log file rotation settings.
const (
	CLILogFileName = "voyager.log"
	LogMaxSizeMB   = 10
	LogMaxBackups  = 3
	LogMaxAgeDays  = 28
	LogCompress    = true
)
