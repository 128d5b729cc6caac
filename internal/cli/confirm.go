// Package cli provides the command-line interface for voyager.
package cli

import (
	"os"

	"golang.org/x/term"
)

// formRunner matches huh.Form's Run method, letting tests substitute a
// form that resolves without touching a real terminal.
type formRunner interface {
	Run() error
}

// terminalCheck reports whether stdin is a terminal. Overridable in
// tests of any destructive command's non-interactive-mode guard.
//
//nolint:gochecknoglobals // test injection point
var terminalCheck = isTerminal

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
