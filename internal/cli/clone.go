// Package cli provides the command-line interface for voyager.
package cli

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceanvoyage/voyager/internal/config"
	"github.com/oceanvoyage/voyager/internal/constants"
	"github.com/oceanvoyage/voyager/internal/provider"
	"github.com/oceanvoyage/voyager/internal/remoteexec"
	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// treeFetcher is the capability runCloneWithDeps needs: run a command on
// the storage VM and capture its stdout and stderr. remoteexec.Client
// satisfies this.
type treeFetcher interface {
	Run(ctx context.Context, sshDest, command string) (remoteexec.Result, error)
}

// AddCloneCommand adds the clone command to the root command.
func AddCloneCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "clone <voyage_id> <local_dir>",
		Short: "Copy a voyage's workspace tree to a local directory",
		Long: `Copy the storage VM's seeded workspace tree to a local directory,
for inspecting a voyage's in-progress code without SSHing in by hand.

Examples:
  voyager clone voyage-abc123 ./inspect`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClone(cmd.Context(), args[0], args[1])
		},
	}
	parent.AddCommand(cmd)
}

func runClone(ctx context.Context, voyageID, localDir string) error {
	rt, err := newRuntime(config.Overrides{})
	if err != nil {
		return err
	}

	storage, err := resolveStorage(ctx, rt.provider, voyageID)
	if err != nil {
		return err
	}

	return runCloneWithDeps(ctx, rt.remote, storage, localDir)
}

func runCloneWithDeps(ctx context.Context, remote treeFetcher, storage provider.VM, localDir string) error {
	workspace := constants.StorageRoot + "/" + constants.WorkspaceDir
	command := fmt.Sprintf("tar -cf - -C %s .", shellQuoteLog(workspace))

	result, err := remote.Run(ctx, storage.SSHDest, command)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: clone workspace: %s", voyageerr.ErrExecError, strings.TrimSpace(result.Stderr))
	}

	if err := os.MkdirAll(localDir, 0o750); err != nil {
		return fmt.Errorf("clone: create %s: %w", localDir, err)
	}
	return extractTar(strings.NewReader(result.Stdout), localDir)
}

// extractTar writes a tar stream's regular files and directories under
// dest, rejecting any entry whose name would escape dest.
func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("clone: read archive: %w", err)
		}

		target := filepath.Join(dest, hdr.Name) //#nosec G305 -- escape checked below
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) && target != filepath.Clean(dest) {
			return fmt.Errorf("clone: archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("clone: mkdir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return fmt.Errorf("clone: mkdir %s: %w", filepath.Dir(target), err)
			}
			if err := writeTarFile(target, tr, hdr.Mode); err != nil {
				return err
			}
		}
	}
}

func writeTarFile(target string, r io.Reader, mode int64) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(mode)) //#nosec G304 -- path validated by extractTar
	if err != nil {
		return fmt.Errorf("clone: create %s: %w", target, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil { //#nosec G110 -- local voyage-scoped archive, not attacker-controlled at scale
		return fmt.Errorf("clone: write %s: %w", target, err)
	}
	return nil
}
