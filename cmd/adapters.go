package cmd

import (
	"context"
	"os"

	"github.com/eykd/tabvet/internal/config"
	"github.com/eykd/tabvet/internal/csvtable"
	"github.com/eykd/tabvet/internal/domain"
	"github.com/eykd/tabvet/internal/fs"
	"github.com/eykd/tabvet/internal/httpapi"
	"github.com/eykd/tabvet/internal/logging"
	"github.com/eykd/tabvet/internal/metrics"
	"github.com/eykd/tabvet/internal/report"
	"github.com/eykd/tabvet/internal/schema"
	"github.com/eykd/tabvet/internal/typecheck"
	"github.com/eykd/tabvet/internal/validation"
)

// Deps holds what the command tree is built from.
type Deps struct {
	Config    *config.Config
	Backend   ValidateBackend
	Rules     RulesLoader
	NewServer ServerFactory
	Getwd     func() (string, error)
}

// --- appBackend ---

// appBackend wires the validation service to the filesystem adapters.
type appBackend struct {
	logLevel string
}

func (b *appBackend) newService(workers int, component, fallbackLevel string) *validation.Service {
	logger := logging.ForCommand(GetVerbose(), b.logLevel, fallbackLevel, component)
	return validation.NewService(fs.OSTree{}, csvtable.Loader{}, typecheck.Checker{},
		validation.WithLogger(logger),
		validation.WithWorkers(workers),
	)
}

// Validate implements ValidateBackend.
func (b *appBackend) Validate(ctx context.Context, opts ValidateOptions, mode domain.Mode, basePath string) (*validation.Run, error) {
	v := validation.NewValidator(b.newService(opts.Workers, "cli", "warn"), schema.Dir(opts.ConfigDir))
	return v.Validate(ctx, mode, basePath)
}

// SaveReport implements ValidateBackend.
func (b *appBackend) SaveReport(ctx context.Context, dir string, mode domain.Mode, findings []domain.Finding) (string, error) {
	return report.NewSink(dir).Save(ctx, mode, findings)
}

// DirExists implements ValidateBackend.
func (b *appBackend) DirExists(path string) bool {
	return fs.DirExists(path)
}

// --- rulesAdapter ---

// rulesAdapter loads rule files from a config directory.
type rulesAdapter struct{}

// Load implements RulesLoader.
func (rulesAdapter) Load(configDir string, mode domain.Mode) (domain.Layout, string, error) {
	dir := schema.Dir(configDir)
	layout, err := dir.Layout(mode)
	return layout, dir.Path(mode), err
}

// --- server factory ---

// newHTTPServer assembles the HTTP API with metrics for serve.
func (b *appBackend) newHTTPServer(opts ServeOptions) Server {
	logger := logging.ForCommand(GetVerbose(), b.logLevel, "info", "server")
	recorder := metrics.New()
	v := validation.NewValidator(b.newService(opts.Workers, "server", "info"), schema.Dir(opts.ConfigDir), recorder)

	var serverOpts []httpapi.Option
	serverOpts = append(serverOpts, httpapi.WithMetrics(recorder.Handler()))
	if opts.DataRoot != "" {
		serverOpts = append(serverOpts, httpapi.WithDataRoot(opts.DataRoot))
	}
	return httpapi.NewServer(v, logger, serverOpts...)
}

// DefaultDeps returns the production dependencies, configured from the
// environment.
func DefaultDeps() Deps {
	cfg := config.Load()
	backend := &appBackend{logLevel: cfg.LogLevel}
	return Deps{
		Config:    cfg,
		Backend:   backend,
		Rules:     rulesAdapter{},
		NewServer: backend.newHTTPServer,
		Getwd:     os.Getwd,
	}
}
