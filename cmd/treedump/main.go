package main

import (
	"os"

	"github.com/3leaps/treedump/internal/cmd"
	"github.com/3leaps/treedump/internal/observability"
)

// version, commit, and date are injected via -ldflags at build time.
var (
	version = "dev"
	commit  = "HEAD"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	code := cmd.Execute()
	observability.Sync()
	os.Exit(code)
}
