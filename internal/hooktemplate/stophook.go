// Package hooktemplate renders the ship's stop hook script: installed
// idempotently by Ship Bootstrap (C7 step 4), it runs when the agent
// runtime terminates, committing any dirty workspace tree and appending
// one timestamped line to the shared progress log. It MUST NOT touch
// task state (spec.md §4.7 invariant).
package hooktemplate

import (
	"fmt"
	"strings"
)

// hookMarker identifies a voyager-installed stop hook so a second
// install recognizes and overwrites a prior version instead of
// stacking wrapper scripts.
const hookMarker = "# VOYAGER_STOP_HOOK"

// RenderStopHook builds the stop hook shell script for shipID. The
// script is idempotent: running it more than once (the agent may
// terminate and be restarted) only ever commits the current dirty tree
// once and appends one more progress line, never duplicating work or
// touching any task file.
func RenderStopHook(shipID, workspaceDir, progressFile string) string {
	return fmt.Sprintf(`#!/bin/sh
%s
# Ship: %s
set -eu

cd %q

if [ -n "$(git status --porcelain)" ]; then
  git add -A
  git commit -m "voyager: %s stop-hook checkpoint" --quiet || true
fi

printf '%%s ship=%s stopped\n' "$(date -u +%%Y-%%m-%%dT%%H:%%M:%%SZ)" >> %q
`, hookMarker, shipID, workspaceDir, shipID, shipID, progressFile)
}

// IsVoyagerHook reports whether script content was produced by
// RenderStopHook, so bootstrap can detect and safely overwrite a
// previously installed hook rather than appending a second copy.
func IsVoyagerHook(content string) bool {
	return strings.Contains(content, hookMarker)
}
