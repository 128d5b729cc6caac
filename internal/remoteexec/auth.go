package remoteexec

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// sshAgentAuth builds an AuthMethod from the running ssh-agent, the
// conventional fallback when a Client has no explicit SignerSource:
// provider credentials for the underlying VM backend are opaque to the
// core, but the operator's own SSH identity is expected to already be
// loaded in their agent.
func sshAgentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("%w: SSH_AUTH_SOCK not set and no signer configured", voyageerr.ErrConnectError)
	}

	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("%w: dial ssh-agent: %w", voyageerr.ErrConnectError, err)
	}

	agentClient := agent.NewClient(conn)
	return ssh.PublicKeysCallback(agentClient.Signers), nil
}
