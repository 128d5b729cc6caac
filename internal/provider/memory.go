package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// memoryProviderName is the PROVIDER value selecting InMemoryProvider,
// used for local development and tests where no real VM backend is
// configured.
const memoryProviderName = "memory"

func init() { //nolint:gochecknoinits // registers the built-in reference backend
	Register(memoryProviderName, func(_ map[string]string) (Provider, error) {
		return NewInMemoryProvider(), nil
	})
}

// InMemoryProvider is a reference Provider backend that tracks VMs in a
// process-local map instead of calling out to a real cloud API. It
// exists for local development and exercising the control plane without
// provisioning real infrastructure, mirroring the in-memory bookkeeping
// of a local micro-VM backend whose create/destroy are not yet wired to
// hardware.
type InMemoryProvider struct {
	mu  sync.Mutex
	vms map[string]VM
}

// NewInMemoryProvider creates an empty InMemoryProvider.
func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{vms: map[string]VM{}}
}

// Create registers a new VM record immediately in StatusRunning; there
// is no real provisioning delay to wait out.
func (p *InMemoryProvider) Create(_ context.Context, name string) (VM, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vm := VM{
		ID:      uuid.NewString(),
		Name:    name,
		SSHDest: fmt.Sprintf("voyager@%s.local", name),
		Status:  StatusRunning,
	}
	p.vms[vm.ID] = vm
	return vm, nil
}

// Destroy removes id from the tracked set. Destroying an id that is
// absent is not an error.
func (p *InMemoryProvider) Destroy(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.vms, id)
	return nil
}

// Get looks up id, reporting absence via ok=false rather than an error.
func (p *InMemoryProvider) Get(_ context.Context, id string) (VM, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	vm, ok := p.vms[id]
	return vm, ok, nil
}

// List returns every tracked VM whose name begins with namePrefix.
func (p *InMemoryProvider) List(_ context.Context, namePrefix string) ([]VM, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]VM, 0, len(p.vms))
	for _, vm := range p.vms {
		if strings.HasPrefix(vm.Name, namePrefix) {
			out = append(out, vm)
		}
	}
	return out, nil
}

// WaitReady succeeds at once for a VM this provider created: an in-memory
// VM is reachable the instant it is created since there is no real network
// hop to wait on. An unknown VM yields ErrNotFound.
func (p *InMemoryProvider) WaitReady(_ context.Context, vm VM, _ time.Duration) error {
	p.mu.Lock()
	_, ok := p.vms[vm.ID]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", vm.Name, voyageerr.ErrNotFound)
	}
	return nil
}
