package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/remoteexec"
)

type fakeLogRunner struct {
	runCommand    string
	runResult     remoteexec.Result
	runErr        error
	streamCommand string
	streamLines   []string
	streamErr     error
}

func (f *fakeLogRunner) Run(_ context.Context, _, command string) (remoteexec.Result, error) {
	f.runCommand = command
	return f.runResult, f.runErr
}

func (f *fakeLogRunner) Stream(_ context.Context, _, command string, onLine func(line string)) error {
	f.streamCommand = command
	for _, line := range f.streamLines {
		onLine(line)
	}
	return f.streamErr
}

func TestRunLogsWithDeps_PrintsTailOutput(t *testing.T) {
	runner := &fakeLogRunner{runResult: remoteexec.Result{Stdout: "line one\nline two\n"}}

	var buf bytes.Buffer
	err := runLogsWithDeps(context.Background(), &buf, runner, provider.VM{SSHDest: "user@host"}, "ship-0", false, "", 200)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "line one")
	assert.Contains(t, runner.runCommand, "voyage/logs/ship-0.log")
	assert.Contains(t, runner.runCommand, "tail -n 200")
}

func TestRunLogsWithDeps_GrepAppendsPipe(t *testing.T) {
	runner := &fakeLogRunner{}

	var buf bytes.Buffer
	err := runLogsWithDeps(context.Background(), &buf, runner, provider.VM{SSHDest: "user@host"}, "ship-1", false, "ERROR", 50)
	require.NoError(t, err)
	assert.Contains(t, runner.runCommand, "| grep")
	assert.Contains(t, runner.runCommand, "ERROR")
}

func TestRunLogsWithDeps_FollowUsesStream(t *testing.T) {
	runner := &fakeLogRunner{streamLines: []string{"a", "b"}}

	var buf bytes.Buffer
	err := runLogsWithDeps(context.Background(), &buf, runner, provider.VM{SSHDest: "user@host"}, "ship-0", true, "", 10)
	require.NoError(t, err)
	assert.Contains(t, runner.streamCommand, "-f")
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestRunLogsWithDeps_NoShipGlobsAllLogs(t *testing.T) {
	runner := &fakeLogRunner{runResult: remoteexec.Result{Stdout: "ship-0: line\nship-1: line\n"}}

	var buf bytes.Buffer
	err := runLogsWithDeps(context.Background(), &buf, runner, provider.VM{SSHDest: "user@host"}, "", false, "", 200)
	require.NoError(t, err)
	assert.Contains(t, runner.runCommand, "voyage/logs/*.log")
	assert.NotContains(t, runner.runCommand, "ship-0.log")
}

func TestShipLogPath(t *testing.T) {
	assert.Equal(t, "voyage/logs/ship-3.log", shipLogPath("ship-3"))
}
