package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanvoyage/voyager/internal/provider"
)

type fakeProber struct {
	err error
}

func (f fakeProber) List(_ context.Context, _ string) ([]provider.VM, error) {
	return nil, f.err
}

func fakeLookPathFound(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func fakeLookPathMissing(name string) (string, error) {
	return "", assert.AnError
}

func TestRunDoctorWithDeps_AllChecksPass(t *testing.T) {
	var buf bytes.Buffer
	err := runDoctorWithDeps(context.Background(), &buf, OutputText, fakeLookPathFound, fakeProber{}, "memory")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ssh")
	assert.Contains(t, buf.String(), "git")
	assert.Contains(t, buf.String(), "provider:memory")
}

func TestRunDoctorWithDeps_MissingToolFails(t *testing.T) {
	var buf bytes.Buffer
	err := runDoctorWithDeps(context.Background(), &buf, OutputText, fakeLookPathMissing, fakeProber{}, "memory")
	require.Error(t, err)
}

func TestRunDoctorWithDeps_ProviderUnreachableFails(t *testing.T) {
	var buf bytes.Buffer
	err := runDoctorWithDeps(context.Background(), &buf, OutputText, fakeLookPathFound, fakeProber{err: assert.AnError}, "memory")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "fail")
}

func TestRunDoctorWithDeps_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	err := runDoctorWithDeps(context.Background(), &buf, OutputJSON, fakeLookPathFound, fakeProber{}, "memory")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"ok": true`)
}

func TestRunDoctorWithDeps_EmptyProviderNameDefaultsToMemory(t *testing.T) {
	var buf bytes.Buffer
	err := runDoctorWithDeps(context.Background(), &buf, OutputText, fakeLookPathFound, fakeProber{}, "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "provider:memory")
}
