package codec

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// fileLock is an advisory exclusive lock on "<container path>.lock".
type fileLock struct {
	flock      *flock.Flock
	timeout    time.Duration
	retryDelay time.Duration
}

func newFileLock(path string, timeout, retryDelay time.Duration) *fileLock {
	return &fileLock{
		flock:      flock.New(path + ".lock"),
		timeout:    timeout,
		retryDelay: retryDelay,
	}
}

// Lock waits up to the configured timeout for the lock.
func (l *fileLock) Lock(ctx context.Context) error {
	lockCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	locked, err := l.flock.TryLockContext(lockCtx, l.retryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %s: %w", ErrLockUnavailable, l.flock.Path(), err)
		}
		return fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLockUnavailable, l.flock.Path())
	}
	return nil
}

func (l *fileLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("error releasing container lock: %w", err)
	}
	return nil
}
