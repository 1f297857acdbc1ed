// Package retry runs a call a bounded number of times with a fixed delay
// between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy is an attempt count and the pause between consecutive attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy is three attempts one second apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: time.Second}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts
// run out or ctx is done. The last error is returned wrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && p.Delay > 0 {
			t := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("retry aborted after %d attempts: %w", attempt-1, errors.Join(ctx.Err(), lastErr))
			case <-t.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return fmt.Errorf("max attempts (%d) exceeded: %w", attempts, lastErr)
}
