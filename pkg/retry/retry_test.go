package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestPolicy_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 3, Delay: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_StopsAtAttemptCount(t *testing.T) {
	calls := 0
	err := Policy{Attempts: 4}.Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})
	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 4, calls)
	assert.Contains(t, err.Error(), "max attempts (4)")
}

func TestPolicy_PermanentErrorIsNotRetried(t *testing.T) {
	notFound := errors.New("no such symbol")
	calls := 0
	err := DefaultPolicy().Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(notFound)
	})
	assert.Same(t, notFound, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_DelayBetweenAttempts(t *testing.T) {
	start := time.Now()
	_ = Policy{Attempts: 3, Delay: 20 * time.Millisecond}.Do(context.Background(), func(context.Context) error {
		return errFlaky
	})
	// two pauses, none after the last attempt
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPolicy_ContextCancelDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 5, Delay: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errFlaky
	})
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})
	assert.Equal(t, 1, calls)
}
