package httpapi

import (
	"github.com/eykd/tabvet/internal/domain"
	"github.com/eykd/tabvet/internal/validation"
)

// FindingResponse is the JSON form of one finding.
type FindingResponse struct {
	Level      string `json:"error_level"`
	Text       string `json:"error_text"`
	FileName   string `json:"file_name"`
	FolderName string `json:"folder_name"`
	LineNumber *int   `json:"line_number"`
}

// Summary counts findings by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// RunResponse is the JSON form of one validation run. The CLI's --json
// output uses the same shape.
type RunResponse struct {
	RunID    string            `json:"run_id"`
	Mode     string            `json:"mode"`
	BasePath string            `json:"base_path"`
	Report   string            `json:"report,omitempty"`
	Findings []FindingResponse `json:"findings"`
	Summary  Summary           `json:"summary"`
}

// NewRunResponse converts a run. reportPath is empty when no report file
// was written.
func NewRunResponse(run *validation.Run, reportPath string) RunResponse {
	findings := run.Findings()
	resp := RunResponse{
		RunID:    run.ID,
		Mode:     string(run.Mode),
		BasePath: run.BasePath,
		Report:   reportPath,
		Findings: make([]FindingResponse, 0, len(findings)),
	}
	for _, f := range findings {
		resp.Findings = append(resp.Findings, newFindingResponse(f))
	}
	resp.Summary.Errors, resp.Summary.Warnings = run.Counts()
	return resp
}

func newFindingResponse(f domain.Finding) FindingResponse {
	fr := FindingResponse{
		Level:      string(f.Severity),
		Text:       f.Message,
		FileName:   f.FileName,
		FolderName: f.FolderName,
	}
	if f.HasLine() {
		line := f.LineNumber
		fr.LineNumber = &line
	}
	return fr
}
