// Package cli provides the command-line interface for voyager.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/localsync"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/remoteexec"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// defaultProviderName is used when configuration leaves Provider unset.
// The in-memory backend is the only one guaranteed to self-register, so
// every command resolves to something runnable without any setup.
const defaultProviderName = "memory"

// runtime bundles the collaborators every fleet-operations and external-
// interface command needs, built once from layered configuration.
type runtime struct {
	cfg      *config.Config
	provider provider.Provider
	remote   *remoteexec.Client
}

// newRuntime loads configuration (applying CLI-flag overrides) and
// resolves the configured provider backend and remote-exec transport.
func newRuntime(overrides config.Overrides) (*runtime, error) {
	cfg, err := config.LoadWithOverrides(overrides)
	if err != nil {
		return nil, err
	}

	providerName := cfg.Provider
	if providerName == "" {
		providerName = defaultProviderName
	}
	prov, err := provider.Get(providerName, cfg.ProviderCredentials)
	if err != nil {
		return nil, err
	}

	remote := remoteexec.NewClient(cfg.Remote.WaitReadyTimeout, cfg.Remote.CommandTimeout)

	return &runtime{cfg: cfg, provider: prov, remote: remote}, nil
}

// resolveStorage finds the storage VM for voyageID. An empty voyageID
// auto-discovers the sole voyage in flight; more than one candidate is
// reported as ErrAmbiguousVoyage so the operator can name one explicitly.
func resolveStorage(ctx context.Context, prov provider.Provider, voyageID string) (provider.VM, error) {
	prefix := domain.VoyagePrefix
	if voyageID != "" {
		prefix = voyageID
	}

	vms, err := prov.List(ctx, prefix)
	if err != nil {
		return provider.VM{}, fmt.Errorf("list voyages: %w", err)
	}

	var storages []provider.VM
	for _, vm := range vms {
		if strings.HasSuffix(vm.Name, "-storage") {
			storages = append(storages, vm)
		}
	}

	switch len(storages) {
	case 0:
		return provider.VM{}, fmt.Errorf("%w: no voyage storage found", voyageerr.ErrNotFound)
	case 1:
		return storages[0], nil
	default:
		sort.Slice(storages, func(i, j int) bool { return storages[i].Name < storages[j].Name })
		names := make([]string, 0, len(storages))
		for _, s := range storages {
			names = append(names, strings.TrimSuffix(s.Name, "-storage"))
		}
		return provider.VM{}, fmt.Errorf("%w: candidates: %s", voyageerr.ErrAmbiguousVoyage, strings.Join(names, ", "))
	}
}

// loadVoyage fetches and parses the voyage descriptor published by sail
// onto the storage VM.
func loadVoyage(ctx context.Context, remote *remoteexec.Client, storage provider.VM) (domain.Voyage, error) {
	data, err := remote.Get(ctx, storage.SSHDest, constants.VoyageDescriptorFile)
	if err != nil {
		return domain.Voyage{}, err
	}
	return domain.ParseVoyage(data)
}

// syncTaskRoot ensures a local mirror of storage's voyage root exists and
// is syncing, returning the local task set directory internal/taskset's
// Store implementations can operate on directly.
func syncTaskRoot(ctx context.Context, voyage domain.Voyage, storage provider.VM) (string, error) {
	dir, err := localsync.VoyageDir(voyage.ID)
	if err != nil {
		return "", err
	}
	if err := localsync.CreateSync(ctx, dir, storage.SSHDest, voyage.ID); err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.TasksDir), nil
}

// shipSSHDest resolves a ship's SSH destination via the provider, given
// its stable name within voyage.
func shipSSHDest(ctx context.Context, prov provider.Provider, voyage domain.Voyage, shipID string) (provider.VM, error) {
	index := strings.TrimPrefix(shipID, "ship-")
	name := voyage.ID + "-ship-" + index
	vm, ok, err := prov.Get(ctx, name)
	if err != nil {
		return provider.VM{}, err
	}
	if !ok {
		return provider.VM{}, fmt.Errorf("%w: ship %q", voyageerr.ErrNotFound, shipID)
	}
	return vm, nil
}
