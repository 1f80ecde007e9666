package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/eykd/tabvet/internal/domain"
)

// LayoutSource provides the rule set for a mode.
type LayoutSource interface {
	Layout(mode domain.Mode) (domain.Layout, error)
}

// RunObserver is notified of every completed run.
type RunObserver interface {
	ObserveRun(mode string, errCount, warnCount int, d time.Duration)
}

// Validator runs a mode's rules against a base path. It is the entry
// point shared by the CLI and the HTTP API.
type Validator struct {
	service   *Service
	layouts   LayoutSource
	observers []RunObserver
}

// NewValidator creates a Validator. Observers are notified after each
// successful run.
func NewValidator(service *Service, layouts LayoutSource, observers ...RunObserver) *Validator {
	return &Validator{service: service, layouts: layouts, observers: observers}
}

// Validate loads the rules for mode and runs them against basePath.
func (v *Validator) Validate(ctx context.Context, mode domain.Mode, basePath string) (*Run, error) {
	layout, err := v.layouts.Layout(mode)
	if err != nil {
		return nil, fmt.Errorf("loading %s rules: %w", mode, err)
	}
	run, err := v.service.Run(ctx, layout, basePath)
	if err != nil {
		return nil, err
	}
	errCount, warnCount := run.Counts()
	for _, o := range v.observers {
		o.ObserveRun(string(mode), errCount, warnCount, run.Duration())
	}
	return run, nil
}
