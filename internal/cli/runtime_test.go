package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanvoyage/voyager/internal/domain"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

type fakeProvider struct {
	vms    []provider.VM
	getErr error
}

func (p *fakeProvider) Create(_ context.Context, name string) (provider.VM, error) {
	return provider.VM{ID: name, Name: name}, nil
}

func (p *fakeProvider) Destroy(_ context.Context, _ string) error { return nil }

func (p *fakeProvider) Get(_ context.Context, id string) (provider.VM, bool, error) {
	if p.getErr != nil {
		return provider.VM{}, false, p.getErr
	}
	for _, vm := range p.vms {
		if vm.Name == id {
			return vm, true, nil
		}
	}
	return provider.VM{}, false, nil
}

func (p *fakeProvider) List(_ context.Context, namePrefix string) ([]provider.VM, error) {
	var out []provider.VM
	for _, vm := range p.vms {
		if len(namePrefix) == 0 || len(vm.Name) >= len(namePrefix) && vm.Name[:len(namePrefix)] == namePrefix {
			out = append(out, vm)
		}
	}
	return out, nil
}

func (p *fakeProvider) WaitReady(_ context.Context, _ provider.VM, _ time.Duration) error { return nil }

func TestResolveStorage_SingleCandidate(t *testing.T) {
	prov := &fakeProvider{vms: []provider.VM{
		{Name: "voyage-abc123-storage"},
		{Name: "voyage-abc123-ship-0"},
	}}

	vm, err := resolveStorage(context.Background(), prov, "")
	require.NoError(t, err)
	assert.Equal(t, "voyage-abc123-storage", vm.Name)
}

func TestResolveStorage_NoneFound(t *testing.T) {
	prov := &fakeProvider{}
	_, err := resolveStorage(context.Background(), prov, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, voyageerr.ErrNotFound)
}

func TestResolveStorage_AmbiguousReportsCandidates(t *testing.T) {
	prov := &fakeProvider{vms: []provider.VM{
		{Name: "voyage-abc123-storage"},
		{Name: "voyage-def456-storage"},
	}}

	_, err := resolveStorage(context.Background(), prov, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, voyageerr.ErrAmbiguousVoyage)
}

func TestResolveStorage_ExplicitVoyageIDNarrowsPrefix(t *testing.T) {
	prov := &fakeProvider{vms: []provider.VM{
		{Name: "voyage-abc123-storage"},
		{Name: "voyage-def456-storage"},
	}}

	vm, err := resolveStorage(context.Background(), prov, "voyage-abc123")
	require.NoError(t, err)
	assert.Equal(t, "voyage-abc123-storage", vm.Name)
}

func TestShipSSHDest_NotFound(t *testing.T) {
	prov := &fakeProvider{}
	voyage, err := domain.NewVoyage("ship it", "acme/widgets", 2, time.Now())
	require.NoError(t, err)

	_, err = shipSSHDest(context.Background(), prov, voyage, "ship-0")
	require.Error(t, err)
	assert.ErrorIs(t, err, voyageerr.ErrNotFound)
}
