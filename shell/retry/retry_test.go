package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/shell/retry"
)

func Test_WithExponentialBackoff_ReturnsImmediately_OnFirstSuccess(t *testing.T) {
	// arrange
	calls := 0

	// act
	metrics, err := retry.WithExponentialBackoff(context.Background(), func(context.Context) error {
		calls++

		return nil
	})

	// assert
	assert.NoError(t, err, "Should succeed")
	assert.Equal(t, 1, calls, "Function should run once")
	assert.Equal(t, 1, metrics.Attempts, "One attempt means no retries")
	assert.Equal(t, "none", metrics.LastErrorType, "No error should be classified")
	assert.False(t, metrics.Exhausted, "Retries were never needed")
}

func Test_WithExponentialBackoff_RetriesRetryableErrors_UntilSuccess(t *testing.T) {
	// arrange
	calls := 0

	// act
	metrics, err := retry.WithExponentialBackoff(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return shell.ErrConcurrencyConflict
		}

		return nil
	}, retry.WithRetryOn(shell.IsConcurrencyConflictError), retry.WithBaseDelay(0))

	// assert
	assert.NoError(t, err, "Third attempt should succeed")
	assert.Equal(t, 3, metrics.Attempts, "Two retries should have happened")
	assert.Equal(t, "none", metrics.LastErrorType, "Final outcome is success")
}

func Test_WithExponentialBackoff_FailsFast_WithoutRetryPredicate(t *testing.T) {
	// arrange
	calls := 0

	// act
	_, err := retry.WithExponentialBackoff(context.Background(), func(context.Context) error {
		calls++

		return shell.ErrConcurrencyConflict
	})

	// assert
	assert.ErrorIs(t, err, shell.ErrConcurrencyConflict, "Error should surface unchanged")
	assert.Equal(t, 1, calls, "No retry without a predicate")
}

func Test_WithExponentialBackoff_FailsFast_OnNonRetryableError(t *testing.T) {
	// arrange
	businessErr := errors.New("book already borrowed")
	calls := 0

	// act
	metrics, err := retry.WithExponentialBackoff(context.Background(), func(context.Context) error {
		calls++

		return businessErr
	}, retry.WithRetryOn(shell.IsConcurrencyConflictError))

	// assert
	assert.ErrorIs(t, err, businessErr, "Business errors must not be retried")
	assert.Equal(t, 1, calls, "Function should run once")
	assert.Equal(t, "other", metrics.LastErrorType, "Business errors classify as other")
}

func Test_WithExponentialBackoff_ReportsExhaustion_WhenAllAttemptsFail(t *testing.T) {
	// arrange
	calls := 0

	// act
	metrics, err := retry.WithExponentialBackoff(context.Background(), func(context.Context) error {
		calls++

		return shell.ErrConcurrencyConflict
	}, retry.WithRetryOn(shell.IsConcurrencyConflictError), retry.WithMaxAttempts(3), retry.WithBaseDelay(0))

	// assert
	assert.ErrorIs(t, err, shell.ErrConcurrencyConflict, "Last error should surface")
	assert.Equal(t, 3, calls, "All attempts should be used")
	assert.True(t, metrics.Exhausted, "Exhaustion should be reported")
	assert.Equal(t, "concurrency_conflict", metrics.LastErrorType, "Conflict should be classified")
}

func Test_WithExponentialBackoff_FailsFast_OnContextCancellation(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	// act
	_, err := retry.WithExponentialBackoff(ctx, func(context.Context) error {
		calls++
		cancel()

		return ctx.Err()
	}, retry.WithRetryOn(func(error) bool { return true }))

	// assert
	assert.ErrorIs(t, err, context.Canceled, "Cancellation should surface")
	assert.Equal(t, 1, calls, "Cancellation must not be retried")
}

func Test_WithExponentialBackoff_RejectsInvalidOptions(t *testing.T) {
	_, err := retry.WithExponentialBackoff(context.Background(), func(context.Context) error { return nil },
		retry.WithMaxAttempts(0))
	assert.ErrorIs(t, err, retry.ErrInvalidMaxAttempts, "Zero attempts must be rejected")

	_, err = retry.WithExponentialBackoff(context.Background(), func(context.Context) error { return nil },
		retry.WithJitterFactor(1.5))
	assert.ErrorIs(t, err, retry.ErrInvalidJitterFactor, "Jitter above 1.0 must be rejected")

	_, err = retry.WithExponentialBackoff(context.Background(), func(context.Context) error { return nil },
		retry.WithRetryOn(nil))
	assert.ErrorIs(t, err, retry.ErrNilRetryableCheck, "Nil predicate must be rejected")
}
