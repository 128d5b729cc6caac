// Package gitutil seeds a voyage's shared workspace: it clones the
// upstream repository into the storage VM's workspace directory and
// checks out a fresh branch, over the same Remote Exec channel (C2)
// used for every other storage-VM operation, so the clone happens
// on the storage VM itself rather than a local git execution.
package gitutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/oceanvoyage/voyager/internal/remoteexec"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Runner is the Remote Exec capability gitutil needs: run a command
// against a destination and report its result. internal/remoteexec.Client
// satisfies this directly.
type Runner interface {
	Run(ctx context.Context, sshDest, command string) (remoteexec.Result, error)
}

// repoCloneURL turns the spec's "owner/name" repo identifier into a
// clone URL. SSH form is used since every other storage/ship operation
// already authenticates over SSH.
func repoCloneURL(repo string) string {
	if strings.Contains(repo, "://") || strings.Contains(repo, "@") {
		return repo // already a full URL or scp-like form
	}
	return "git@github.com:" + repo + ".git"
}

// SeedRepository clones repo into workspaceDir on the VM at sshDest and
// checks out a fresh branch named branch. Failure here is reported as
// ErrRepoSeedFailed per spec.md §4.6 step 4; the caller (Sail) leaves
// the storage VM in place for operator inspection rather than tearing
// it down.
func SeedRepository(ctx context.Context, runner Runner, sshDest, repo, workspaceDir, branch string) error {
	cloneCmd := fmt.Sprintf("git clone %s %s", shellQuote(repoCloneURL(repo)), shellQuote(workspaceDir))
	if result, err := runner.Run(ctx, sshDest, cloneCmd); err != nil || result.ExitCode != 0 {
		return seedFailure(err, result, "clone")
	}

	checkoutCmd := fmt.Sprintf("cd %s && git checkout -b %s", shellQuote(workspaceDir), shellQuote(branch))
	if result, err := runner.Run(ctx, sshDest, checkoutCmd); err != nil || result.ExitCode != 0 {
		return seedFailure(err, result, "checkout branch "+branch)
	}

	return nil
}

func seedFailure(err error, result remoteexec.Result, step string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", voyageerr.ErrRepoSeedFailed, step, err)
	}
	return fmt.Errorf("%w: %s: %s", voyageerr.ErrRepoSeedFailed, step, strings.TrimSpace(result.Stderr))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
