// Package voyageerr provides centralized error handling for voyager.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error kinds can be
// checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package voyageerr

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error kinds with errors.Is().
var (
	// ErrProviderUnavailable indicates the configured VM provider backend
	// could not be reached or rejected the request outright.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrQuotaExceeded indicates the provider refused to create a VM
	// because an account or region quota was exhausted.
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrConnectError indicates a remote-exec channel could not be
	// established to the target VM.
	ErrConnectError = errors.New("connect failed")

	// ErrExecError indicates a remote command returned a non-zero exit
	// status or could not be started once the channel was open.
	ErrExecError = errors.New("remote command failed")

	// ErrNotFound indicates a requested VM, voyage, or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTimeout indicates a bounded remote operation exceeded its
	// deadline (wait_ready, command execution, or retry budget).
	ErrTimeout = errors.New("operation timed out")

	// ErrStorageProvisionFailed indicates the storage VM for a voyage
	// could not be created or never became reachable.
	ErrStorageProvisionFailed = errors.New("storage provisioning failed")

	// ErrRepoSeedFailed indicates the upstream repository could not be
	// cloned and checked out onto the storage VM's workspace.
	ErrRepoSeedFailed = errors.New("repository seed failed")

	// ErrMountFailed indicates a ship failed to mount the shared storage
	// voyage root or task set.
	ErrMountFailed = errors.New("mount failed")

	// ErrAgentStartFailed indicates the agent runtime could not be
	// started detached on a ship.
	ErrAgentStartFailed = errors.New("agent start failed")

	// ErrAmbiguousVoyage indicates more than one candidate voyage was
	// found when the operator did not name one explicitly.
	ErrAmbiguousVoyage = errors.New("ambiguous voyage: specify a voyage id")

	// ErrInvalidPlan indicates a plan directory is missing required
	// files or contains structurally invalid content.
	ErrInvalidPlan = errors.New("invalid plan directory")

	// ErrTaskParseError indicates a task file's JSON could not be parsed.
	ErrTaskParseError = errors.New("task parse error")

	// ErrLockTimeout indicates a file lock could not be acquired within
	// the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidArgument indicates a malformed CLI argument or flag value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNonInteractiveMode indicates a destructive operation requiring
	// confirmation was attempted without a TTY and without --force.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")

	// ErrOperationCanceled indicates the operator declined a confirmation
	// prompt.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrJSONErrorOutput indicates that an error has already been output
	// as JSON. Commands return this to get a non-zero exit code while
	// cobra's default error printing is silenced to avoid duplication.
	ErrJSONErrorOutput = errors.New("error output as JSON")

	// ErrInvalidOutputFormat indicates an invalid --output value.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrDataFault indicates a task set violates a data invariant (e.g.
	// an in_progress task with incomplete blockers). The deriver still
	// returns a result; this sentinel is for callers that want to
	// surface the fault separately.
	ErrDataFault = errors.New("task set data fault")
)

// ExitCodeError wraps an error with the exit code the CLI should use.
// Component code never calls os.Exit directly; only the CLI boundary
// inspects this wrapper via ExitCodeFor.
type ExitCodeError struct {
	Code int
	Err  error
}

// NewExitCodeError wraps err to signal that code should be used as the
// process exit status.
func NewExitCodeError(code int, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: err}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCodeFor inspects err for an *ExitCodeError and returns its code.
// If err is nil, it returns 0. If err is not an *ExitCodeError, it
// returns fallback.
func ExitCodeFor(err error, fallback int) int {
	if err == nil {
		return 0
	}
	var e *ExitCodeError
	if errors.As(err, &e) {
		return e.Code
	}
	return fallback
}
