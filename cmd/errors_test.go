package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/eykd/tabvet/internal/domain"
)

func TestContextError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ContextError
		want string
	}{
		{
			name: "op and path",
			err:  &ContextError{Op: "read", Path: "/data/raw/a.csv", Err: errors.New("permission denied")},
			want: "read: /data/raw/a.csv: permission denied",
		},
		{
			name: "op only",
			err:  &ContextError{Op: "load rules", Err: errors.New("invalid selector")},
			want: "load rules: invalid selector",
		},
		{
			name: "path only",
			err:  &ContextError{Path: "/data/raw/a.csv", Err: errors.New("not found")},
			want: "/data/raw/a.csv: not found",
		},
		{
			name: "error only",
			err:  &ContextError{Err: errors.New("unknown error")},
			want: "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContextError_Unwrap(t *testing.T) {
	inner := errors.New("inner error")
	err := &ContextError{Op: "read", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("ContextError should unwrap to inner error")
	}
}

func TestContextError_Unwrap_ExitCoder(t *testing.T) {
	inner := &FindingsDetectedError{Errors: 2, Warnings: 1}
	err := &ContextError{Op: "validate raw", Err: inner}

	// ExitCodeFromError should find the wrapped ExitCoder
	code := ExitCodeFromError(err)
	if code != 2 {
		t.Errorf("ExitCodeFromError(ContextError wrapping FindingsDetectedError) = %d, want 2", code)
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "simple error",
			err:  errors.New("something failed"),
			want: "tabvet: something failed\n",
		},
		{
			name: "context error with op and path",
			err:  &ContextError{Op: "read", Path: "/data/raw/a.csv", Err: errors.New("permission denied")},
			want: "tabvet: read: /data/raw/a.csv: permission denied\n",
		},
		{
			name: "context error with op only",
			err:  &ContextError{Op: "load rules", Err: errors.New("invalid selector")},
			want: "tabvet: load rules: invalid selector\n",
		},
		{
			name: "context error with path only",
			err:  &ContextError{Path: "/data/raw/a.csv", Err: errors.New("not found")},
			want: "tabvet: /data/raw/a.csv: not found\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			if got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunCLI_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		runErr   error
		wantCode int
	}{
		{
			name:     "nil error returns 0",
			runErr:   nil,
			wantCode: 0,
		},
		{
			name:     "generic error returns 1",
			runErr:   errors.New("something went wrong"),
			wantCode: 1,
		},
		{
			name:     "findings detected returns 2",
			runErr:   &FindingsDetectedError{Errors: 1, Warnings: 0},
			wantCode: 2,
		},
		{
			name:     "missing base path returns 1",
			runErr:   &MissingBasePathError{Modes: []domain.Mode{domain.ModeRaw}},
			wantCode: 1,
		},
		{
			name:     "context error wrapping generic returns 1",
			runErr:   &ContextError{Op: "read", Err: errors.New("fail")},
			wantCode: 1,
		},
		{
			name:     "context error wrapping findings returns 2",
			runErr:   &ContextError{Op: "validate raw", Err: &FindingsDetectedError{Errors: 1}},
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{
				Use:          "test",
				SilenceUsage: true,
				RunE: func(cmd *cobra.Command, args []string) error {
					return tt.runErr
				},
			}

			stdout := new(bytes.Buffer)
			stderr := new(bytes.Buffer)

			got := RunCLI(cmd, []string{}, stdout, stderr)
			if got != tt.wantCode {
				t.Errorf("RunCLI() exit code = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestRunCLI_ErrorsWrittenToStderr(t *testing.T) {
	cmd := &cobra.Command{
		Use:          "test",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return &ContextError{Op: "read", Path: "/data/raw/a.csv", Err: errors.New("permission denied")}
		},
	}

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	RunCLI(cmd, []string{}, stdout, stderr)

	// Error message should appear in stderr with tabvet prefix
	if !strings.Contains(stderr.String(), "tabvet:") {
		t.Errorf("expected 'tabvet:' prefix in stderr, got: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "permission denied") {
		t.Errorf("expected error message in stderr, got: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "/data/raw/a.csv") {
		t.Errorf("expected file path in stderr, got: %q", stderr.String())
	}

	// Error should NOT appear in stdout
	if strings.Contains(stdout.String(), "permission denied") {
		t.Errorf("error should not appear in stdout, got: %q", stdout.String())
	}
}

func TestRunCLI_NoStderrOnSuccess(t *testing.T) {
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	code := RunCLI(cmd, []string{}, stdout, stderr)

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if stderr.Len() > 0 {
		t.Errorf("stderr should be empty on success, got: %q", stderr.String())
	}
}

func TestRootCmd_SilenceErrors(t *testing.T) {
	cmd := NewRootCmd()
	if !cmd.SilenceErrors {
		t.Error("root command should have SilenceErrors = true for consistent error handling")
	}
}

func TestMissingBasePathError(t *testing.T) {
	err := &MissingBasePathError{Modes: []domain.Mode{domain.ModeRaw, domain.ModeSource}}

	want := "skipped RAW, SOURCE: data folder does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFindingsDetectedError(t *testing.T) {
	err := &FindingsDetectedError{Errors: 3, Warnings: 1}

	if err.Error() != "validation found 3 errors, 1 warnings" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", err.ExitCode())
	}
}
