// Package main is the entry point for the horilla-installer CLI.
//
// horilla-installer provisions a single Debian or Ubuntu host with Horilla
// HRMS: Docker, the application and its database, an nginx reverse proxy with
// TLS, and optional encrypted off-site backups. Every step is idempotent, so
// a re-run resumes after a failure.
//
// For detailed usage information, run:
//
//	horilla-installer --help
package main

import (
	"fmt"
	"os"

	"github.com/horilla-opensource/horilla-installer/cmd/horilla-installer/commands"
	"github.com/horilla-opensource/horilla-installer/cmd/horilla-installer/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		if !handlers.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(handlers.ExitCode(err))
	}
}
