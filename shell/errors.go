package shell

import (
	"context"
	"errors"
)

// concurrencyConflictError marks an optimistic concurrency failure on an
// aggregate row. The marker method lets the retry package classify it without
// importing this package.
type concurrencyConflictError struct{}

func (concurrencyConflictError) Error() string {
	return "concurrency conflict: aggregate was modified by a concurrent transaction"
}

// IsConcurrencyConflict marks the error for retry classification.
func (concurrencyConflictError) IsConcurrencyConflict() bool {
	return true
}

// ErrConcurrencyConflict is returned when saving an aggregate whose version
// no longer matches the stored row. It is the only error the write path retries.
var ErrConcurrencyConflict error = concurrencyConflictError{}

// IsConcurrencyConflictError reports whether the error chain contains an
// optimistic concurrency conflict.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsCancellationError reports whether the error chain contains a context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError reports whether the error chain contains a deadline exceed.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
