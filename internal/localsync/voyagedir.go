package localsync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oceanvoyage/voyager/internal/constants"
)

// voyagesSubdir holds one local mirror directory per voyage, under the
// CLI's own local state directory.
const voyagesSubdir = "voyages"

// VoyageDir returns the local mirror directory for a voyage, creating it
// if absent. This is the localDir every CreateSync call and every
// internal/taskset.FileStore call against this voyage should use.
func VoyageDir(voyageID string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}

	dir := filepath.Join(home, constants.VoyagerHome, voyagesSubdir, voyageID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create local voyage mirror directory %s: %w", dir, err)
	}
	return dir, nil
}
