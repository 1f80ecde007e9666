// Package report serializes findings into CSV report files.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eykd/tabvet/internal/domain"
	"github.com/eykd/tabvet/internal/lock"
)

// Header is the first row of every report.
var Header = []string{"error_level", "error_text", "file_name", "folder_name", "line_number"}

// timestampLayout renders as YYYYMMDD_HHMMSS.
const timestampLayout = "20060102_150405"

// Write serializes findings as CSV, header first. Fields that do not
// apply to a finding are written as empty strings.
func Write(w io.Writer, findings []domain.Finding) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, f := range findings {
		if err := cw.Write(record(f)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(f domain.Finding) []string {
	line := ""
	if f.HasLine() {
		line = strconv.Itoa(f.LineNumber)
	}
	return []string{string(f.Severity), f.Message, f.FileName, f.FolderName, line}
}

// FileName returns the report file name for a run of mode started at t.
func FileName(mode domain.Mode, t time.Time) string {
	return fmt.Sprintf("validation_report_%s_%s.csv", mode, t.Format(timestampLayout))
}

// Locker serializes access to the report directory.
type Locker interface {
	With(ctx context.Context, fn func() error) error
}

// Sink writes report files into a directory.
type Sink struct {
	dir    string
	now    func() time.Time
	locker Locker
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithClock replaces the clock used to stamp report names.
func WithClock(now func() time.Time) SinkOption {
	return func(s *Sink) { s.now = now }
}

// WithLocker replaces the directory lock.
func WithLocker(l Locker) SinkOption {
	return func(s *Sink) { s.locker = l }
}

// NewSink creates a Sink writing into dir. The directory lock lives in
// dir itself.
func NewSink(dir string, opts ...SinkOption) *Sink {
	s := &Sink{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = lock.ForDir(dir)
	}
	return s
}

// Dir returns the directory reports are written to.
func (s *Sink) Dir() string {
	return s.dir
}

// Save writes findings to a new timestamped report and returns its path.
func (s *Sink) Save(ctx context.Context, mode domain.Mode, findings []domain.Finding) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(s.dir, FileName(mode, s.now()))

	err := s.locker.With(ctx, func() error {
		return writeFile(path, findings)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, findings []domain.Finding) error {
	var buf bytes.Buffer
	if err := Write(&buf, findings); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
