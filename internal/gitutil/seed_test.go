package gitutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanvoyage/voyager/internal/remoteexec"
)

type fakeRunner struct {
	commands []string
	fail     map[int]remoteexec.Result
	err      map[int]error
}

func (f *fakeRunner) Run(_ context.Context, _, command string) (remoteexec.Result, error) {
	idx := len(f.commands)
	f.commands = append(f.commands, command)
	if err, ok := f.err[idx]; ok {
		return remoteexec.Result{}, err
	}
	if result, ok := f.fail[idx]; ok {
		return result, nil
	}
	return remoteexec.Result{ExitCode: 0}, nil
}

func TestSeedRepository_Success(t *testing.T) {
	runner := &fakeRunner{}
	err := SeedRepository(context.Background(), runner, "voyager@storage.local", "acme/widgets", "/voyage/workspace", "voyage-abc123")
	require.NoError(t, err)

	require.Len(t, runner.commands, 2)
	assert.Contains(t, runner.commands[0], "git clone")
	assert.Contains(t, runner.commands[0], "git@github.com:acme/widgets.git")
	assert.Contains(t, runner.commands[1], "git checkout -b 'voyage-abc123'")
}

func TestSeedRepository_FullURLPassedThrough(t *testing.T) {
	runner := &fakeRunner{}
	err := SeedRepository(context.Background(), runner, "voyager@storage.local", "https://example.com/acme/widgets.git", "/voyage/workspace", "branch")
	require.NoError(t, err)
	assert.Contains(t, runner.commands[0], "https://example.com/acme/widgets.git")
}

func TestSeedRepository_CloneFailureWrapsErrRepoSeedFailed(t *testing.T) {
	runner := &fakeRunner{fail: map[int]remoteexec.Result{0: {ExitCode: 128, Stderr: "repository not found"}}}
	err := SeedRepository(context.Background(), runner, "voyager@storage.local", "acme/widgets", "/voyage/workspace", "branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clone")
	assert.Contains(t, err.Error(), "repository not found")
}

func TestSeedRepository_CheckoutFailureWrapsErrRepoSeedFailed(t *testing.T) {
	runner := &fakeRunner{fail: map[int]remoteexec.Result{1: {ExitCode: 1, Stderr: "branch exists"}}}
	err := SeedRepository(context.Background(), runner, "voyager@storage.local", "acme/widgets", "/voyage/workspace", "branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkout")
}

func TestSeedRepository_TransportErrorPropagates(t *testing.T) {
	runner := &fakeRunner{err: map[int]error{0: assertErr}}
	err := SeedRepository(context.Background(), runner, "voyager@storage.local", "acme/widgets", "/voyage/workspace", "branch")
	require.Error(t, err)
}

var assertErr = errTransport{}

type errTransport struct{}

func (errTransport) Error() string { return "connection reset" }
