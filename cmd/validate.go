package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/tabvet/internal/config"
	"github.com/eykd/tabvet/internal/domain"
	"github.com/eykd/tabvet/internal/httpapi"
	"github.com/eykd/tabvet/internal/validation"
)

// ValidateOptions carries the flags that shape a run.
type ValidateOptions struct {
	ConfigDir string
	Workers   int
}

// ValidateBackend runs validations and persists their reports.
type ValidateBackend interface {
	Validate(ctx context.Context, opts ValidateOptions, mode domain.Mode, basePath string) (*validation.Run, error)
	SaveReport(ctx context.Context, dir string, mode domain.Mode, findings []domain.Finding) (string, error)
	DirExists(path string) bool
}

// skippedRun records a mode that was not run.
type skippedRun struct {
	Mode     string `json:"mode"`
	BasePath string `json:"base_path"`
	Reason   string `json:"reason"`
}

// validateJSONResponse is the JSON output structure for the validate command.
type validateJSONResponse struct {
	Runs    []httpapi.RunResponse `json:"runs"`
	Skipped []skippedRun          `json:"skipped,omitempty"`
}

type validateFlags struct {
	modeType   string
	rawPath    string
	sourcePath string
	configDir  string
	reportDir  string
	workers    int
	noReport   bool
	json       bool
	strict     bool
	noColor    bool
}

// selectModes expands a --type value into the modes to run, in order.
func selectModes(t string) ([]domain.Mode, error) {
	if t == "both" {
		return []domain.Mode{domain.ModeRaw, domain.ModeSource}, nil
	}
	mode, err := domain.ParseMode(t)
	if err != nil {
		return nil, fmt.Errorf("invalid --type %q: want raw, source, or both", t)
	}
	return []domain.Mode{mode}, nil
}

func (f *validateFlags) basePath(mode domain.Mode) string {
	if mode == domain.ModeRaw {
		return f.rawPath
	}
	return f.sourcePath
}

func modeLabel(mode domain.Mode) string {
	return strings.ToUpper(string(mode))
}

// runValidate runs every selected mode and reports the outcome. Progress
// goes to stderr so stdout stays machine-readable under --json.
func runValidate(cmd *cobra.Command, backend ValidateBackend, f *validateFlags) error {
	modes, err := selectModes(f.modeType)
	if err != nil {
		return err
	}
	if f.workers < 1 {
		return fmt.Errorf("invalid --workers %d: must be at least 1", f.workers)
	}
	asJSON := f.json || GetJSON()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	st := newStyler(stdout, f.noColor)

	fmt.Fprintln(stderr, "Paths to validate:")
	for _, mode := range modes {
		path := f.basePath(mode)
		fmt.Fprintf(stderr, "%s path: %s (exists: %t)\n", modeLabel(mode), path, backend.DirExists(path))
	}

	out := validateJSONResponse{Runs: []httpapi.RunResponse{}}
	var skipped []domain.Mode
	var errTotal, warnTotal int

	for _, mode := range modes {
		base := f.basePath(mode)
		fmt.Fprintf(stderr, "%s validation started in folder: %s\n", modeLabel(mode), base)
		if !backend.DirExists(base) {
			fmt.Fprintf(stderr, "ERROR: %s folder does not exist: %s\n", modeLabel(mode), base)
			skipped = append(skipped, mode)
			out.Skipped = append(out.Skipped, skippedRun{Mode: string(mode), BasePath: base, Reason: "folder does not exist"})
			continue
		}

		run, err := backend.Validate(cmd.Context(), ValidateOptions{ConfigDir: f.configDir, Workers: f.workers}, mode, base)
		if err != nil {
			return &ContextError{Op: "validate " + string(mode), Path: base, Err: err}
		}

		reportPath := ""
		if !f.noReport {
			reportPath, err = backend.SaveReport(cmd.Context(), f.reportDir, mode, run.Findings())
			if err != nil {
				return &ContextError{Op: "write report", Path: f.reportDir, Err: err}
			}
			fmt.Fprintf(stderr, "%s validation report was generated: %s\n", modeLabel(mode), reportPath)
		}

		errCount, warnCount := run.Counts()
		errTotal += errCount
		warnTotal += warnCount

		if asJSON {
			out.Runs = append(out.Runs, httpapi.NewRunResponse(run, reportPath))
		} else {
			formatRunHuman(stdout, st, run)
		}
	}

	if asJSON {
		writeJSON(stdout, out)
	}

	if len(skipped) > 0 {
		return &MissingBasePathError{Modes: skipped}
	}
	if errTotal > 0 || (f.strict && warnTotal > 0) {
		return &FindingsDetectedError{Errors: errTotal, Warnings: warnTotal}
	}
	return nil
}

func formatRunHuman(w io.Writer, st styler, run *validation.Run) {
	fmt.Fprintf(w, "%s %s (run %s)\n", modeLabel(run.Mode), run.BasePath, run.ID)
	formatFindingsHuman(w, st, run.Findings())
}

// NewValidateCmd creates the validate command. cfg supplies flag defaults.
func NewValidateCmd(backend ValidateBackend, cfg *config.Config) *cobra.Command {
	f := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate data folders against the configured rules",
		Long: "Validate checks the RAW and/or SOURCE data folders against raw.yaml and source.yaml " +
			"from the config directory, prints the findings, and writes a CSV report per mode.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, backend, f)
		},
	}

	cmd.Flags().StringVar(&f.modeType, "type", "both", "Validation type: raw, source, or both")
	cmd.Flags().StringVar(&f.rawPath, "raw-path", cfg.RawPath, "Path to raw data files")
	cmd.Flags().StringVar(&f.sourcePath, "source-path", cfg.SourcePath, "Path to source data files")
	cmd.Flags().StringVar(&f.configDir, "config-dir", cfg.ConfigDir, "Directory holding raw.yaml and source.yaml")
	cmd.Flags().StringVar(&f.reportDir, "report-dir", cfg.ReportDir, "Directory to write reports into")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "Files validated concurrently within a folder")
	cmd.Flags().BoolVar(&f.noReport, "no-report", false, "Do not write report files")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable coloured output")

	return cmd
}
