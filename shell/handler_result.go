package shell

import (
	"time"

	"github.com/bookwyrm/lending-core-go/shell/retry"
)

// HandlerResult represents the outcome of a command handler execution.
// It captures both business outcomes (idempotency) and execution metadata
// (retry information) without coupling the handler to specific observability
// implementations.
type HandlerResult struct {
	// Idempotent indicates whether the operation was idempotent (no state change needed).
	// This is a first-class business outcome, not an error condition.
	Idempotent bool

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for successful operations (non-idempotent).
func NewSuccessResult(retryMetrics retry.Metrics) HandlerResult {
	return HandlerResult{
		Idempotent:       false,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.Exhausted,
	}
}

// NewIdempotentResult creates a HandlerResult for idempotent operations.
func NewIdempotentResult(retryMetrics retry.Metrics) HandlerResult {
	return HandlerResult{
		Idempotent:       true,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.Exhausted,
	}
}

// NewErrorResult creates a HandlerResult for failed operations.
// It is used when the handler returns an error but still reports retry metadata.
func NewErrorResult(retryMetrics retry.Metrics) HandlerResult {
	return HandlerResult{
		Idempotent:       false,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.Exhausted,
	}
}

// ConflictRetryOptions returns the retry configuration shared by all write-path
// command handlers: retry only on optimistic concurrency conflicts.
func ConflictRetryOptions(extra ...retry.Option) []retry.Option {
	options := []retry.Option{
		retry.WithRetryOn(IsConcurrencyConflictError),
	}

	return append(options, extra...)
}
