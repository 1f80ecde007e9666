package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/eykd/tabvet/internal/domain"
)

// writeJSON encodes v as JSON to w, handling I/O errors at the boundary.
func writeJSON(w io.Writer, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
	}
}

// styler colours severities when the destination is a colour terminal.
type styler struct {
	profile termenv.Profile
}

// newStyler picks the colour profile of w. noColor forces plain text.
func newStyler(w io.Writer, noColor bool) styler {
	if noColor {
		return styler{profile: termenv.Ascii}
	}
	return styler{profile: termenv.NewOutput(w).ColorProfile()}
}

func (s styler) severity(sev domain.FindingSeverity) string {
	label := string(sev)
	if s.profile == termenv.Ascii {
		return label
	}
	color := "#f59e0b"
	if sev == domain.SeverityError {
		color = "#ef4444"
	}
	return s.profile.String(label).Foreground(s.profile.Color(color)).Bold().String()
}

// findingLocation renders folder/file:line, leaving out the parts a
// finding does not have.
func findingLocation(f domain.Finding) string {
	var b strings.Builder
	b.WriteString(f.FolderName)
	if f.FileName != "" {
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(f.FileName)
	}
	if f.HasLine() {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.LineNumber))
	}
	return b.String()
}

// formatFindingsHuman writes one line per finding followed by a summary.
func formatFindingsHuman(w io.Writer, st styler, findings []domain.Finding) {
	for _, f := range findings {
		fmt.Fprintf(w, "%s [%s] %s\n", findingLocation(f), st.severity(f.Severity), f.Message)
	}
	errCount, warnCount := domain.CountBySeverity(findings)
	if errCount > 0 || warnCount > 0 {
		fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", errCount, warnCount)
	} else {
		fmt.Fprintln(w, "No findings")
	}
}
