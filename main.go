// Package main is the entry point for the tabvet CLI application.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/eykd/tabvet/cmd"
)

func main() {
	// Cancelled on SIGINT so a run stops between files.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	root := cmd.Root()
	root.SetContext(ctx)
	code := cmd.RunCLI(root, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
