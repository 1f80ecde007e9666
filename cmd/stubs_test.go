package cmd

import (
	"context"
	"errors"
	"sync"

	"github.com/eykd/tabvet/internal/csvtable"
	"github.com/eykd/tabvet/internal/domain"
	"github.com/eykd/tabvet/internal/fs"
	"github.com/eykd/tabvet/internal/typecheck"
	"github.com/eykd/tabvet/internal/validation"
)

type saveCall struct {
	dir      string
	mode     domain.Mode
	findings []domain.Finding
}

// stubBackend runs fixed layouts against real folders and records report
// writes instead of performing them.
type stubBackend struct {
	layouts     map[domain.Mode]domain.Layout
	validateErr error
	saveErr     error

	opts  []ValidateOptions
	saves []saveCall
}

func (b *stubBackend) Validate(ctx context.Context, opts ValidateOptions, mode domain.Mode, basePath string) (*validation.Run, error) {
	b.opts = append(b.opts, opts)
	if b.validateErr != nil {
		return nil, b.validateErr
	}
	layout := b.layouts[mode]
	layout.Mode = mode
	svc := validation.NewService(fs.OSTree{}, csvtable.Loader{}, typecheck.Checker{},
		validation.WithIDGenerator(func() string { return "run-" + string(mode) }))
	return svc.Run(ctx, layout, basePath)
}

func (b *stubBackend) SaveReport(_ context.Context, dir string, mode domain.Mode, findings []domain.Finding) (string, error) {
	b.saves = append(b.saves, saveCall{dir: dir, mode: mode, findings: findings})
	if b.saveErr != nil {
		return "", b.saveErr
	}
	return dir + "/validation_report_" + string(mode) + ".csv", nil
}

func (b *stubBackend) DirExists(path string) bool {
	return fs.DirExists(path)
}

// stubRules returns fixed layouts per mode.
type stubRules struct {
	layouts map[domain.Mode]domain.Layout
	err     error
}

func (r *stubRules) Load(configDir string, mode domain.Mode) (domain.Layout, string, error) {
	if r.err != nil {
		return domain.Layout{}, "", r.err
	}
	layout := r.layouts[mode]
	layout.Mode = mode
	return layout, configDir + "/" + string(mode) + ".yaml", nil
}

// fakeServer blocks in Start until Shutdown is called.
type fakeServer struct {
	startErr error
	addr     string
	stopped  chan struct{}
	once     sync.Once
	shutdown bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{stopped: make(chan struct{})}
}

func (s *fakeServer) Start(addr string) error {
	s.addr = addr
	if s.startErr != nil {
		return s.startErr
	}
	<-s.stopped
	return nil
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.shutdown = true
	s.once.Do(func() { close(s.stopped) })
	return nil
}

var errBoom = errors.New("boom")
