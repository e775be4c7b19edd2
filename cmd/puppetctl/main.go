// Package main is the entry point for the puppetctl CLI.
//
// puppetctl launches EC2 instances and turns them into puppet masters and
// slaves. Slaves find their master through instance tags, so no state is kept
// outside the cloud.
//
// Commands: create-master, create-slaves, install-master, install-slave,
// list, init, version.
//
// For detailed usage information, run:
//
//	puppetctl --help
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/puppetctl/cmd/puppetctl/commands"
	"github.com/imamik/puppetctl/cmd/puppetctl/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		handlers.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
