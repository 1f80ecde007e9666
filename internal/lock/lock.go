// Package lock provides an advisory lock that serializes report writes
// into a shared directory.
package lock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// FileName is the lock file created inside a guarded directory.
const FileName = ".tabvet.lock"

// DefaultRetryDelay is how often a blocked Acquire polls the lock.
const DefaultRetryDelay = 50 * time.Millisecond

// ErrNotAcquired is returned when the lock could not be taken before the
// context ended.
var ErrNotAcquired = errors.New("another tabvet process is writing reports")

// Flocker abstracts the subset of flock.Flock used for advisory locking.
type Flocker interface {
	TryLockContext(ctx context.Context, retryDelay time.Duration) (bool, error)
	Unlock() error
}

// Lock wraps a Flocker and waits for it rather than failing fast: report
// writes are short, so a second writer simply queues.
type Lock struct {
	flocker    Flocker
	retryDelay time.Duration
}

// New creates a Lock from the given Flocker.
func New(f Flocker) *Lock {
	return &Lock{flocker: f, retryDelay: DefaultRetryDelay}
}

// ForDir creates a Lock backed by FileName inside dir.
func ForDir(dir string) *Lock {
	return New(flock.New(filepath.Join(dir, FileName)))
}

// Acquire blocks until the lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.flocker.TryLockContext(ctx, l.retryDelay)
	if ctxErr := ctx.Err(); ctxErr != nil && !ok {
		return fmt.Errorf("%w: %w", ErrNotAcquired, ctxErr)
	}
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	if !ok {
		return ErrNotAcquired
	}
	return nil
}

// Release releases the advisory lock.
func (l *Lock) Release() error {
	if err := l.flocker.Unlock(); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}

// With runs fn while holding the lock. An error from fn takes precedence
// over an error releasing the lock.
func (l *Lock) With(ctx context.Context, fn func() error) (err error) {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if rerr := l.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}
