// Package provider abstracts the VM backend behind the control plane:
// create, destroy, discover, and wait-for-ready, so every command that
// needs a VM (sail, ship bootstrap, fleet operations) talks to one
// small interface instead of a concrete cloud SDK.
//
// IMPORTANT: this package may import internal/constants, internal/domain,
// and internal/voyageerr, but MUST NOT import internal/cli.
package provider

import (
	"context"
	"time"
)

// Status is a VM's lifecycle state as reported by its backend.
type Status string

// VM lifecycle states.
const (
	StatusCreating Status = "creating"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
	StatusUnknown  Status = "unknown"
)

// VM is a provisioned virtual machine as the control plane understands
// it: just enough to name it, reach it over Remote Exec, and report its
// status.
type VM struct {
	ID       string
	Name     string
	SSHDest  string // user@host, passed verbatim to Remote Exec (C2)
	Status   Status
}

// Provider is the abstract VM backend contract (spec component C1).
// Implementations MAY block in Create until the VM is reachable; the
// naming convention for storage and ship VMs is owned by the caller
// (internal/domain.Voyage), not by the Provider itself.
type Provider interface {
	// Create provisions a new VM named name. It MAY block until the VM
	// is reachable; implementations that create asynchronously should
	// still return once the VM record exists, leaving readiness to
	// WaitReady.
	Create(ctx context.Context, name string) (VM, error)

	// Destroy removes the VM identified by id. Destroying an id that no
	// longer exists is not an error: idempotent per spec.md §4.8.
	Destroy(ctx context.Context, id string) error

	// Get looks up a VM by id. A missing VM is reported by returning
	// ok=false, not an error.
	Get(ctx context.Context, id string) (vm VM, ok bool, err error)

	// List enumerates VMs whose name begins with namePrefix. An empty
	// prefix lists every VM the backend knows about.
	List(ctx context.Context, namePrefix string) ([]VM, error)

	// WaitReady polls vm until a trivial remote command succeeds or
	// timeout elapses.
	WaitReady(ctx context.Context, vm VM, timeout time.Duration) error
}

// Prober is the minimal remote-exec capability WaitReady needs: run one
// trivial command and report whether the channel plus command succeeded.
// internal/remoteexec.Client satisfies this.
type Prober interface {
	Probe(ctx context.Context, sshDest string) error
}
