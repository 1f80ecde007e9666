package e2e_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// runTabvet executes the tabvet binary in dir and returns stdout, stderr,
// and the exit code. The TABVET_* environment is cleared so host settings
// do not leak into scenarios.
func runTabvet(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(tabvetBinary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"TABVET_CONFIG_DIR=", "TABVET_RAW_PATH=", "TABVET_SOURCE_PATH=", "TABVET_REPORT_DIR=", "LOG_LEVEL=error")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run tabvet: %v", err)
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

// writeFile creates a file below dir, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// mkdir creates a directory below dir.
func mkdir(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
}

type finding struct {
	Level      string `json:"error_level"`
	Text       string `json:"error_text"`
	FileName   string `json:"file_name"`
	FolderName string `json:"folder_name"`
	LineNumber *int   `json:"line_number"`
}

type runResult struct {
	RunID    string    `json:"run_id"`
	Mode     string    `json:"mode"`
	BasePath string    `json:"base_path"`
	Report   string    `json:"report"`
	Findings []finding `json:"findings"`
	Summary  struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

// parseRuns decodes validate --json output.
func parseRuns(t *testing.T, stdout string) []runResult {
	t.Helper()
	var out struct {
		Runs []runResult `json:"runs"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to parse validate JSON: %v\noutput: %s", err, stdout)
	}
	return out.Runs
}

// texts returns the error_text of each finding.
func texts(fs []finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Text
	}
	return out
}
