// Package cmd contains the CLI commands for the tabvet application.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

// verbose holds the global --verbose flag state.
var verbose bool

// jsonOutput holds the global --json flag state.
var jsonOutput bool

func init() {
	rootCmd = BuildCommandTree(DefaultDeps())
}

// GetVerbose returns the current verbose flag state.
func GetVerbose() bool {
	return verbose
}

// GetJSON returns the current global --json flag state.
func GetJSON() bool {
	return jsonOutput
}

// NewRootCmd creates a new root command instance without subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tabvet",
		Short:         "Validate folders of CSV files against declared schemas",
		Long:          "tabvet checks that a directory tree of CSV files has the required folders, files, and typed columns, and writes the findings as a report.",
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

// ExecuteContext runs the root command with the given context.
// This enables graceful shutdown via context cancellation (e.g., on SIGINT).
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Root returns the process-wide command tree.
func Root() *cobra.Command {
	return rootCmd
}
