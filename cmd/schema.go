package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/tabvet/internal/config"
	"github.com/eykd/tabvet/internal/domain"
)

// RulesLoader loads the layout for a mode and reports which file it read.
type RulesLoader interface {
	Load(configDir string, mode domain.Mode) (domain.Layout, string, error)
}

type columnJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type fileJSON struct {
	Name    string       `json:"name"`
	Columns []columnJSON `json:"columns"`
}

type folderJSON struct {
	Folder  string       `json:"folder"`
	Columns []columnJSON `json:"columns,omitempty"`
	Files   []fileJSON   `json:"files,omitempty"`
}

type layoutJSON struct {
	Mode            string       `json:"mode"`
	RulesPath       string       `json:"rules_path"`
	RequiredFolders []string     `json:"required_folders"`
	Folders         []folderJSON `json:"folders"`
	Warnings        []string     `json:"warnings"`
}

type schemaJSONResponse struct {
	Layouts []layoutJSON `json:"layouts"`
}

func columnsJSON(s domain.Schema) []columnJSON {
	cols := make([]columnJSON, 0, len(s))
	for _, c := range s {
		cols = append(cols, columnJSON{Name: c.Name, Type: string(c.Type), Nullable: c.Nullable})
	}
	return cols
}

// unsupportedTypes lists declared types the type checker does not know.
// Such columns still load; they produce a finding per file at run time.
func unsupportedTypes(layout domain.Layout) []string {
	var warnings []string
	check := func(where string, s domain.Schema) {
		for _, c := range s {
			if !c.Type.Supported() {
				warnings = append(warnings, fmt.Sprintf("%s: column %s declares unsupported type '%s'", where, c.Name, c.Type))
			}
		}
	}
	for _, rule := range layout.Rules {
		check(rule.Folder, rule.Shared)
		for _, file := range rule.Files {
			check(rule.Folder+"/"+file.Name, file.Schema)
		}
	}
	return warnings
}

func newLayoutJSON(layout domain.Layout, path string) layoutJSON {
	out := layoutJSON{
		Mode:            string(layout.Mode),
		RulesPath:       path,
		RequiredFolders: append([]string{}, layout.RequiredFolders...),
		Folders:         []folderJSON{},
		Warnings:        unsupportedTypes(layout),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	for _, rule := range layout.Rules {
		folder := folderJSON{Folder: rule.Folder}
		if layout.Mode == domain.ModeRaw {
			folder.Columns = columnsJSON(rule.Shared)
		}
		for _, file := range rule.Files {
			folder.Files = append(folder.Files, fileJSON{Name: file.Name, Columns: columnsJSON(file.Schema)})
		}
		out.Folders = append(out.Folders, folder)
	}
	return out
}

func formatColumnsHuman(w io.Writer, indent string, s domain.Schema) {
	if len(s) == 0 {
		fmt.Fprintf(w, "%s(no columns)\n", indent)
	}
	for _, c := range s {
		nullable := ""
		if c.Nullable {
			nullable = " nullable"
		}
		fmt.Fprintf(w, "%s%s: %s%s\n", indent, c.Name, c.Type, nullable)
	}
}

func formatLayoutHuman(w io.Writer, layout domain.Layout, path string) {
	fmt.Fprintf(w, "%s rules (%s)\n", modeLabel(layout.Mode), path)
	fmt.Fprintf(w, "  required folders: %s\n", strings.Join(layout.RequiredFolders, ", "))
	for _, rule := range layout.Rules {
		if layout.Mode == domain.ModeRaw {
			fmt.Fprintf(w, "  %s/* (every file)\n", rule.Folder)
			formatColumnsHuman(w, "    ", rule.Shared)
			continue
		}
		fmt.Fprintf(w, "  %s/\n", rule.Folder)
		for _, file := range rule.Files {
			fmt.Fprintf(w, "    %s\n", file.Name)
			formatColumnsHuman(w, "      ", file.Schema)
		}
	}
	for _, warning := range unsupportedTypes(layout) {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

// NewSchemaCmd creates the schema command, which prints the parsed rules.
func NewSchemaCmd(rules RulesLoader, cfg *config.Config) *cobra.Command {
	var (
		modeType   string
		configDir  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:          "schema",
		Short:        "Show the validation rules as parsed",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes, err := selectModes(modeType)
			if err != nil {
				return err
			}
			asJSON := jsonOutput || GetJSON()
			out := schemaJSONResponse{Layouts: []layoutJSON{}}

			for i, mode := range modes {
				layout, path, err := rules.Load(configDir, mode)
				if err != nil {
					return &ContextError{Op: "load rules", Err: err}
				}
				if asJSON {
					out.Layouts = append(out.Layouts, newLayoutJSON(layout, path))
					continue
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				formatLayoutHuman(cmd.OutOrStdout(), layout, path)
			}

			if asJSON {
				writeJSON(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modeType, "type", "both", "Rules to show: raw, source, or both")
	cmd.Flags().StringVar(&configDir, "config-dir", cfg.ConfigDir, "Directory holding raw.yaml and source.yaml")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
