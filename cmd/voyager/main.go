// Package main provides the entry point for the voyager CLI.
package main

import (
	"context"
	"os"

	"github.com/oceanvoyage/voyager/internal/cli"
	"github.com/oceanvoyage/voyager/internal/signal"
)

// version, commit, and date are set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	h := signal.NewHandler(context.Background())
	defer h.Stop()

	os.Exit(cli.Execute(h.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
}
