package remoteexec

import (
	"os/exec"
	"syscall"
)

// lookPath resolves name on PATH.
func lookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// execSyscall replaces the current process image with argv[0], the
// direct-shell handoff `shell` needs: the CLI itself becomes the ssh
// session rather than spawning and waiting on a child.
func execSyscall(path string, argv, envv []string) error {
	return syscall.Exec(path, argv, envv) //#nosec G204 -- path resolved via exec.LookPath, argv built from a validated ssh destination
}
