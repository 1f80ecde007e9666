package cmd

import (
	"github.com/spf13/cobra"
)

// BuildCommandTree assembles the root command and all subcommands.
func BuildCommandTree(deps Deps) *cobra.Command {
	root := NewRootCmd()
	root.AddCommand(
		NewValidateCmd(deps.Backend, deps.Config),
		NewSchemaCmd(deps.Rules, deps.Config),
		NewInitCmd(deps.Getwd, deps.Config.ConfigDir),
		NewServeCmd(deps.NewServer, deps.Config),
	)
	return root
}
