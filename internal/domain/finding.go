package domain

import "fmt"

// FindingSeverity indicates how severe a finding is.
type FindingSeverity string

const (
	// SeverityError indicates a finding that must be resolved.
	SeverityError FindingSeverity = "error"
	// SeverityWarning indicates a finding that should be reviewed.
	SeverityWarning FindingSeverity = "warning"
)

// Finding represents one validation outcome discovered during a run.
// LineNumber is 1-based with the header on line 1; zero means the finding
// is not tied to a row.
type Finding struct {
	Severity   FindingSeverity
	Message    string
	FileName   string
	FolderName string
	LineNumber int
}

// HasLine reports whether the finding points at a specific row.
func (f Finding) HasLine() bool {
	return f.LineNumber > 0
}

// LineForRow converts a 0-based data row index into the line number a
// spreadsheet editor would show for it.
func LineForRow(row int) int {
	return row + 2
}

// Location identifies where a finding was produced.
type Location struct {
	Folder string
	File   string
}

func (loc Location) finding(sev FindingSeverity, line int, format string, args ...any) Finding {
	return Finding{
		Severity:   sev,
		Message:    fmt.Sprintf(format, args...),
		FileName:   loc.File,
		FolderName: loc.Folder,
		LineNumber: line,
	}
}

// FolderMissing reports a required folder that does not exist.
func FolderMissing(folder string) Finding {
	return Location{Folder: folder}.finding(SeverityError, 0, "Required folder '%s' is missing", folder)
}

// FolderEmpty reports a required folder that exists but has no entries.
func FolderEmpty(folder string) Finding {
	return Location{Folder: folder}.finding(SeverityWarning, 0, "Folder '%s' does not contain any file", folder)
}

// FolderUnreadable reports a folder whose entries could not be listed.
func FolderUnreadable(folder string, err error) Finding {
	return Location{Folder: folder}.finding(SeverityError, 0, "Failed to read folder '%s': %v", folder, err)
}

// FileMissing reports a required file that is absent from its folder.
func (loc Location) FileMissing() Finding {
	return loc.finding(SeverityError, 0, "Required file '%s' is missing", loc.File)
}

// UnsupportedFormat reports a file whose extension is not a supported tabular format.
func (loc Location) UnsupportedFormat(path string) Finding {
	return loc.finding(SeverityError, 0, "Unsupported file format: %s", path)
}

// ReadFailed reports a file that could not be loaded.
func (loc Location) ReadFailed(path string, err error) Finding {
	return loc.finding(SeverityError, 0, "Failed to read %s: %v", path, err)
}

// ColumnMissing reports a declared column absent from the file header.
func (loc Location) ColumnMissing(column string) Finding {
	return loc.finding(SeverityError, 0, "Required column '%s' is missing", column)
}

// ColumnUnexpected reports a header column that no requirement declares.
func (loc Location) ColumnUnexpected(column string) Finding {
	return loc.finding(SeverityWarning, 0, "Unexpected column '%s' found", column)
}

// UnsupportedType reports a column declared with an unknown type tag.
func (loc Location) UnsupportedType(column string, t ColumnType) Finding {
	return loc.finding(SeverityError, 0, "Unsupported data type '%s' for column %s", t, column)
}

// ColumnFailed reports a column whose values could not be read.
func (loc Location) ColumnFailed(column string, err error) Finding {
	return loc.finding(SeverityError, 0, "Error validating column %s: %v", column, err)
}

// NullNotAllowed reports an empty cell in a non-nullable column.
func (loc Location) NullNotAllowed(line int) Finding {
	return loc.finding(SeverityError, line, "NULL value not allowed")
}

// WrongType reports a cell that does not satisfy its column type.
func (loc Location) WrongType(column string, line int) Finding {
	return loc.finding(SeverityError, line, "Wrong datatype for the column %s", column)
}

// CountBySeverity counts errors and warnings in a slice of findings.
func CountBySeverity(findings []Finding) (errCount, warnCount int) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			errCount++
		} else {
			warnCount++
		}
	}
	return
}
