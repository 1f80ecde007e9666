// Package validation provides the application service that checks a folder
// tree of tabular files against a declared layout.
package validation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eykd/tabvet/internal/domain"
)

// FolderReader abstracts inspecting folders and files beneath a base path.
type FolderReader interface {
	ReadFolder(ctx context.Context, path string) (domain.FolderListing, error)
	FileExists(ctx context.Context, path string) (bool, error)
}

// TableLoader abstracts loading a whole tabular file.
type TableLoader interface {
	Supports(path string) bool
	Load(ctx context.Context, path string) (*domain.Table, error)
}

// TypeChecker abstracts checking one cell against a declared type.
type TypeChecker interface {
	Check(value domain.Cell, t domain.ColumnType) error
}

// Logger is the subset of a structured logger the service writes to.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...interface{}) {}
func (nopLogger) Infow(string, ...interface{})  {}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkers sets how many files of a folder are validated concurrently.
// Values below 1 mean sequential validation.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithClock replaces the clock used to stamp runs.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service validates folder trees. It holds no per-run state and may be
// shared between concurrent runs.
type Service struct {
	reader  FolderReader
	loader  TableLoader
	checker TypeChecker
	logger  Logger
	workers int
	newID   func() string
	now     func() time.Time
}

// NewService creates a Service with the given dependencies.
func NewService(reader FolderReader, loader TableLoader, checker TypeChecker, opts ...Option) *Service {
	s := &Service{
		reader:  reader,
		loader:  loader,
		checker: checker,
		logger:  nopLogger{},
		workers: 1,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run is the outcome of validating one base path. Its findings are
// append-only while the run is in progress and fixed once it returns.
type Run struct {
	ID         string
	Mode       domain.Mode
	BasePath   string
	StartedAt  time.Time
	FinishedAt time.Time

	findings []domain.Finding
}

func (r *Run) add(fs ...domain.Finding) {
	r.findings = append(r.findings, fs...)
}

// Findings returns a copy of the run's findings in emission order.
func (r *Run) Findings() []domain.Finding {
	out := make([]domain.Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// Counts returns the number of error and warning findings.
func (r *Run) Counts() (errCount, warnCount int) {
	return domain.CountBySeverity(r.findings)
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Run validates basePath against layout. Missing folders, files, and
// unreadable content become findings; only context cancellation is
// returned as an error.
func (s *Service) Run(ctx context.Context, layout domain.Layout, basePath string) (*Run, error) {
	run := &Run{
		ID:        s.newID(),
		Mode:      layout.Mode,
		BasePath:  basePath,
		StartedAt: s.now(),
	}
	s.logger.Infow("validation started", "run_id", run.ID, "mode", run.Mode, "base_path", basePath)

	run.add(s.checkFolders(ctx, layout, basePath)...)

	required := make(map[string]bool, len(layout.RequiredFolders))
	for _, f := range layout.RequiredFolders {
		required[f] = true
	}

	for _, rule := range layout.Rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		steps := s.planFolder(ctx, layout.Mode, rule, basePath, required[rule.Folder])
		findings, err := s.execute(ctx, layout.Mode, steps)
		if err != nil {
			return nil, err
		}
		run.add(findings...)
	}

	run.FinishedAt = s.now()
	errCount, warnCount := run.Counts()
	s.logger.Infow("validation finished",
		"run_id", run.ID,
		"mode", run.Mode,
		"errors", errCount,
		"warnings", warnCount,
		"duration", run.Duration(),
	)
	return run, nil
}
