package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanvoyage/voyager/internal/provider"
)

type fakeFleetDestroyer struct {
	listResult  []provider.VM
	listErr     error
	destroyErrs map[string]error
	destroyed   []string
}

func (f *fakeFleetDestroyer) List(_ context.Context, _ string) ([]provider.VM, error) {
	return f.listResult, f.listErr
}

func (f *fakeFleetDestroyer) Destroy(_ context.Context, id string) error {
	f.destroyed = append(f.destroyed, id)
	if f.destroyErrs != nil {
		return f.destroyErrs[id]
	}
	return nil
}

type fakeSyncTerminator struct {
	terminated []string
}

func (f *fakeSyncTerminator) TerminateVoyageSyncs(_ context.Context, voyageID string) error {
	f.terminated = append(f.terminated, voyageID)
	return nil
}

func TestRunSinkWithDeps_ExcludesStorageByDefault(t *testing.T) {
	destroyer := &fakeFleetDestroyer{listResult: []provider.VM{
		{Name: "voyage-1-ship-0"},
		{Name: "voyage-1-storage"},
	}}
	terminator := &fakeSyncTerminator{}

	var buf bytes.Buffer
	err := runSinkWithDeps(context.Background(), &buf, OutputText, destroyer, terminator, "voyage-1-", "voyage-1", false, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"voyage-1-ship-0"}, destroyer.destroyed)
}

func TestRunSinkWithDeps_IncludeStorageDestroysEverything(t *testing.T) {
	destroyer := &fakeFleetDestroyer{listResult: []provider.VM{
		{Name: "voyage-1-ship-0"},
		{Name: "voyage-1-storage"},
	}}
	terminator := &fakeSyncTerminator{}

	var buf bytes.Buffer
	err := runSinkWithDeps(context.Background(), &buf, OutputText, destroyer, terminator, "voyage-1-", "voyage-1", true, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"voyage-1-ship-0", "voyage-1-storage"}, destroyer.destroyed)
	assert.Equal(t, []string{"voyage-1"}, terminator.terminated)
}

func TestRunSinkWithDeps_NoMatchingVMsIsNotAnError(t *testing.T) {
	destroyer := &fakeFleetDestroyer{}
	terminator := &fakeSyncTerminator{}

	var buf bytes.Buffer
	err := runSinkWithDeps(context.Background(), &buf, OutputText, destroyer, terminator, "voyage-1-", "voyage-1", true, true)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no matching VMs found")
	assert.Empty(t, terminator.terminated)
}

func TestRunSinkWithDeps_PartialFailureReportsExitPartialSuccess(t *testing.T) {
	destroyer := &fakeFleetDestroyer{
		listResult:  []provider.VM{{Name: "voyage-1-ship-0"}, {Name: "voyage-1-storage"}},
		destroyErrs: map[string]error{"voyage-1-storage": assert.AnError},
	}
	terminator := &fakeSyncTerminator{}

	var buf bytes.Buffer
	err := runSinkWithDeps(context.Background(), &buf, OutputText, destroyer, terminator, "voyage-1-", "voyage-1", true, true)
	require.Error(t, err)
	assert.Equal(t, ExitPartialSuccess, ExitCodeForError(err))
}

func TestRunSinkWithDeps_AllDestroysAcrossVoyages(t *testing.T) {
	destroyer := &fakeFleetDestroyer{listResult: []provider.VM{
		{Name: "voyage-1-ship-0"},
		{Name: "voyage-2-storage"},
	}}
	terminator := &fakeSyncTerminator{}

	var buf bytes.Buffer
	err := runSinkWithDeps(context.Background(), &buf, OutputText, destroyer, terminator, "voyage-", "every voyage", true, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"voyage-1-ship-0", "voyage-2-storage"}, destroyer.destroyed)
	assert.ElementsMatch(t, []string{"voyage-1", "voyage-2"}, terminator.terminated)
}

func TestVoyageIDFromVMName(t *testing.T) {
	assert.Equal(t, "voyage-1", voyageIDFromVMName("voyage-1-storage"))
	assert.Equal(t, "voyage-1", voyageIDFromVMName("voyage-1-ship-3"))
}

func TestRunSink_MutuallyExclusiveArgAndAll(t *testing.T) {
	err := runSink(context.Background(), nil, nil, "voyage-1", false, true, false)
	require.Error(t, err)
}
