// Package main is the entry point for the tether CLI.
package main

import (
	"os"

	"github.com/mrz1836/tether/internal/cli"
)

// Set by the release build with -ldflags "-X main.version=...".
//
//nolint:gochecknoglobals // build-time metadata
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	err := cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCode(err))
}
