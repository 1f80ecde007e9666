package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const rawRulesTemplate = `# RAW rules: every file in a listed folder must carry the folder's columns.
# Extra columns are allowed. Empty cells are type-checked like any other.
required_folders:
  - customers

file_requirements:
  customers:
    required_columns:
      customer_id: {type: int}
      name: {type: str}
      signup_date: {type: datetime}
`

const sourceRulesTemplate = `# SOURCE rules: each listed file must exist by exact name. Columns not
# declared here are reported as warnings. Empty cells are errors unless the
# column is nullable.
required_folders:
  - crm

folder_file_requirements:
  crm:
    customers.csv:
      columns:
        customer_id: {type: int, nullable: false}
        balance: {type: float, nullable: true}
        updated_at: {type: datetime}
`

// scaffoldFile pairs a rule file name with its starting content.
type scaffoldFile struct {
	name    string
	content string
}

var scaffoldFiles = []scaffoldFile{
	{name: "raw.yaml", content: rawRulesTemplate},
	{name: "source.yaml", content: sourceRulesTemplate},
}

// NewInitCmd creates the init command. The getwd function returns the
// directory a relative --config-dir is resolved against.
func NewInitCmd(getwd func() (string, error), defaultConfigDir string) *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Create starter raw.yaml and source.yaml rule files",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := configDir
			if !filepath.IsAbs(dir) {
				cwd, err := getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				dir = filepath.Join(cwd, dir)
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &ContextError{Op: "create config directory", Path: dir, Err: err}
			}

			for _, f := range scaffoldFiles {
				path := filepath.Join(dir, f.name)
				_, statErr := os.Stat(path)
				if statErr == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "exists  %s\n", path)
					continue
				}
				if !errors.Is(statErr, fs.ErrNotExist) {
					return &ContextError{Op: "stat", Path: path, Err: statErr}
				}
				if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
					return &ContextError{Op: "write", Path: path, Err: err}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", defaultConfigDir, "Directory to create the rule files in")

	return cmd
}
