// Package remoteexec is the uniform channel to a named VM (spec
// component C2): run a command, upload/download a file, stream a
// command's output, or replace the current process with an interactive
// shell. The concrete transport is SSH via golang.org/x/crypto/ssh; a
// failed command returns its non-zero exit cleanly, and only a failed
// channel itself produces an error.
package remoteexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Result is the outcome of a single Run call.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Client is a Remote Exec channel to one destination (user@host).
// Connections are dialed per call rather than pooled: sail and fleet
// operations are short-lived CLI invocations, not long-running daemons,
// so connection reuse buys little and dialing fresh avoids tracking
// stale sessions across a long follow.
type Client struct {
	// SignerSource supplies the private key used to authenticate. If
	// nil, the client falls back to the SSH agent via SSH_AUTH_SOCK.
	SignerSource func() (ssh.Signer, error)

	// CommandTimeout bounds a single Run call. Zero means no timeout
	// beyond ctx, used by Stream's follow mode which has none by
	// contract.
	CommandTimeout time.Duration

	// ConnectTimeout bounds establishing the TCP+SSH handshake.
	ConnectTimeout time.Duration
}

// NewClient creates a Client with the given command and connect
// timeouts.
func NewClient(connectTimeout, commandTimeout time.Duration) *Client {
	return &Client{ConnectTimeout: connectTimeout, CommandTimeout: commandTimeout}
}

func (c *Client) dial(ctx context.Context, sshDest string) (*ssh.Client, error) {
	user, host, err := splitDest(sshDest)
	if err != nil {
		return nil, err
	}

	auth, err := c.authMethod()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", voyageerr.ErrConnectError, err)
	}

	connectTimeout := c.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //#nosec G106 -- short-lived ephemeral voyage VMs, no persistent trust store to pin against
		Timeout:         connectTimeout,
	}

	// host may carry an explicit port (host:port); otherwise use 22.
	addr := host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		addr = net.JoinHostPort(host, "22")
	}

	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", voyageerr.ErrConnectError, sshDest, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: handshake %s: %w", voyageerr.ErrConnectError, sshDest, err)
	}

	return ssh.NewClient(clientConn, chans, reqs), nil
}

func (c *Client) authMethod() (ssh.AuthMethod, error) {
	if c.SignerSource != nil {
		signer, err := c.SignerSource()
		if err != nil {
			return nil, err
		}
		return ssh.PublicKeys(signer), nil
	}
	return sshAgentAuth()
}

func splitDest(sshDest string) (user, host string, err error) {
	parts := strings.SplitN(sshDest, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: ssh destination %q must be user@host", voyageerr.ErrInvalidArgument, sshDest)
	}
	return parts[0], parts[1], nil
}

// Run executes command on dest and waits for it to finish or
// CommandTimeout/ctx to expire. A non-zero exit is reported in the
// Result, not as an error; only a connection or session failure returns
// one.
func (c *Client) Run(ctx context.Context, sshDest, command string) (Result, error) {
	if c.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.CommandTimeout)
		defer cancel()
	}

	client, err := c.dial(ctx, sshDest)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("%w: open session on %s: %w", voyageerr.ErrConnectError, sshDest, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return Result{}, ctx.Err()
	case runErr := <-done:
		exitCode := 0
		if runErr != nil {
			var exitErr *ssh.ExitError
			if asExitError(runErr, &exitErr) {
				exitCode = exitErr.ExitStatus()
			} else {
				return Result{}, fmt.Errorf("%w: %s: %w", voyageerr.ErrExecError, sshDest, runErr)
			}
		}
		return Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}, nil
	}
}

func asExitError(err error, target **ssh.ExitError) bool {
	exitErr, ok := err.(*ssh.ExitError) //nolint:errorlint // ssh.Session.Run never wraps this error
	if ok {
		*target = exitErr
	}
	return ok
}

// Probe runs a trivial, near-instant command to check reachability. It
// satisfies internal/provider.Prober so any Provider backend can reuse
// this transport for WaitReady.
func (c *Client) Probe(ctx context.Context, sshDest string) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := c.Run(probeCtx, sshDest, "true")
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: probe exited %d", voyageerr.ErrConnectError, result.ExitCode)
	}
	return nil
}

// Put uploads content to remotePath on dest via a one-shot `cat >
// remotePath` pipe, avoiding a dependency on the remote having sftp
// enabled.
func (c *Client) Put(ctx context.Context, sshDest string, content io.Reader, remotePath string) error {
	client, err := c.dial(ctx, sshDest)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("%w: open session on %s: %w", voyageerr.ErrConnectError, sshDest, err)
	}
	defer func() { _ = session.Close() }()

	session.Stdin = content
	var stderr bytes.Buffer
	session.Stderr = &stderr

	quotedPath := shellQuote(remotePath)
	if err := session.Run("cat > " + quotedPath); err != nil {
		return fmt.Errorf("%w: put %s to %s: %s: %w", voyageerr.ErrExecError, remotePath, sshDest, stderr.String(), err)
	}
	return nil
}

// Get downloads remotePath's contents from dest.
func (c *Client) Get(ctx context.Context, sshDest, remotePath string) ([]byte, error) {
	result, err := c.Run(ctx, sshDest, "cat "+shellQuote(remotePath))
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("%w: get %s from %s: %s", voyageerr.ErrExecError, remotePath, sshDest, result.Stderr)
	}
	return []byte(result.Stdout), nil
}

// Stream runs command on dest and yields each line of its stdout to
// onLine as it arrives, for `logs --follow`; stderr is not forwarded. It has no
// timeout beyond ctx by contract: follow-mode streaming may run
// indefinitely until the caller cancels ctx.
func (c *Client) Stream(ctx context.Context, sshDest, command string, onLine func(line string)) error {
	client, err := c.dial(ctx, sshDest)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("%w: open session on %s: %w", voyageerr.ErrConnectError, sshDest, err)
	}
	defer func() { _ = session.Close() }()

	stdout, err := session.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe on %s: %w", voyageerr.ErrConnectError, sshDest, err)
	}

	if err := session.Start(command); err != nil {
		return fmt.Errorf("%w: start stream %s: %w", voyageerr.ErrExecError, sshDest, err)
	}

	lineCh := make(chan string)
	scanDone := make(chan error, 1)
	go scanLines(stdout, lineCh, scanDone)

	for {
		select {
		case <-ctx.Done():
			_ = session.Signal(ssh.SIGKILL)
			return ctx.Err()
		case line, ok := <-lineCh:
			if !ok {
				continue
			}
			onLine(line)
		case err := <-scanDone:
			_ = session.Wait()
			if err != nil && err != io.EOF { //nolint:errorlint // sentinel from bufio.Scanner's own error surface
				return fmt.Errorf("%w: stream %s: %w", voyageerr.ErrExecError, sshDest, err)
			}
			return nil
		}
	}
}

// Interactive replaces the current process image with a direct
// interactive shell to dest, using the local ssh binary so the
// terminal's raw-mode handling, window resize signals, and pty
// allocation are exactly what a human running `ssh` by hand would get.
// It never returns on success.
func (c *Client) Interactive(sshDest string) error {
	sshPath, err := lookPath("ssh")
	if err != nil {
		return fmt.Errorf("%w: %w", voyageerr.ErrExecError, err)
	}
	args := []string{"ssh", "-o", "StrictHostKeyChecking=no", sshDest}
	return execSyscall(sshPath, args, os.Environ())
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
