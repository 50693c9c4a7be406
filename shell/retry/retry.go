// Package retry implements jittered exponential backoff for transient
// failures: optimistic concurrency conflicts on the write path and
// persistence failures in the statistics projector.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/bookwyrm/lending-core-go/shell/observability"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	// RetriesMetric tracks retry attempts by operation type.
	RetriesMetric = "retries_total"

	// RetryDelayMetric tracks the backoff delay before each retry attempt.
	RetryDelayMetric = "retry_delay_seconds"

	// MaxRetriesReachedMetric tracks when retry exhaustion occurs.
	MaxRetriesReachedMetric = "max_retries_reached_total"

	labelOperationType = "operation_type"
	labelAttemptNumber = "attempt_number"
	labelErrorType     = "error_type"
)

var (
	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")

	// ErrNilRetryableCheck is returned when a nil retryable check is provided.
	ErrNilRetryableCheck = errors.New("retryable check must not be nil")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// Metrics captures execution metadata of one retried operation,
// so callers can report it without coupling retry to a metrics backend.
type Metrics struct {
	// Attempts is the total number of attempts made (1 means no retries).
	Attempts int

	// TotalDelay is the cumulative time spent sleeping between attempts.
	TotalDelay time.Duration

	// LastErrorType classifies the final error: "none", "concurrency_conflict",
	// "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// Exhausted is true when all attempts were used up on retryable errors.
	Exhausted bool
}

// config holds configuration for exponential backoff retry logic.
type config struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	retryable        func(error) bool
	metricsCollector observability.MetricsCollector
	operationType    string
}

// Option configures the retry behavior.
type Option func(*config) error

// WithMaxAttempts sets the maximum number of attempts (including the first).
func WithMaxAttempts(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = n
		return nil
	}
}

// WithBaseDelay sets the delay before the first retry; subsequent delays double.
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return ErrNegativeBaseDelay
		}
		c.baseDelay = d
		return nil
	}
}

// WithJitterFactor sets the random jitter fraction added to each backoff delay.
func WithJitterFactor(f float64) Option {
	return func(c *config) error {
		if f < 0.0 || f > 1.0 {
			return ErrInvalidJitterFactor
		}
		c.jitterFactor = f
		return nil
	}
}

// WithRetryOn sets the predicate deciding which errors are retried.
// Without it, every error fails fast.
func WithRetryOn(check func(error) bool) Option {
	return func(c *config) error {
		if check == nil {
			return ErrNilRetryableCheck
		}
		c.retryable = check
		return nil
	}
}

// WithMetrics enables retry metrics, labeled with the given operation type.
func WithMetrics(collector observability.MetricsCollector, operationType string) Option {
	return func(c *config) error {
		c.metricsCollector = collector
		c.operationType = operationType
		return nil
	}
}

// WithExponentialBackoff executes fn with jittered exponential backoff.
//
// Retry Schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms (with 30% jitter).
// Only errors accepted by the WithRetryOn predicate are retried - everything
// else fails fast. Context cancellation always fails fast.
func WithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...Option) (Metrics, error) {
	cfg := &config{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(cfg); err != nil {
			return Metrics{Attempts: 0, LastErrorType: errorType(err)}, err
		}
	}

	metrics := Metrics{LastErrorType: "none"}

	var lastErr error

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: baseDelay * 2^(attempt-1)
			delay := cfg.baseDelay * time.Duration(1<<(attempt-1))

			// Jitter prevents thundering herd on contended rows
			jitter := rand.Float64() * float64(delay) * cfg.jitterFactor //nolint:gosec // math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			recordRetryDelay(ctx, cfg, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
				metrics.TotalDelay += backoffDelay
			case <-ctx.Done():
				metrics.LastErrorType = errorType(ctx.Err())
				return metrics, ctx.Err()
			}
		}

		metrics.Attempts = attempt + 1

		lastErr = fn(ctx)
		if lastErr == nil {
			metrics.LastErrorType = "none"
			return metrics, nil
		}

		metrics.LastErrorType = errorType(lastErr)

		if cfg.retryable == nil || !cfg.retryable(lastErr) || isCancellation(lastErr) {
			return metrics, lastErr // Permanent failure
		}

		recordRetryAttempt(ctx, cfg, attempt, lastErr)
	}

	metrics.Exhausted = true
	recordMaxRetriesReached(ctx, cfg, lastErr)

	return metrics, lastErr
}

// isCancellation reports whether the error chain contains a context cancellation.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// errorType classifies an error for metric labels and handler results.
func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		type conflict interface{ IsConcurrencyConflict() bool }
		var c conflict
		if errors.As(err, &c) && c.IsConcurrencyConflict() {
			return "concurrency_conflict"
		}
		return "other"
	}
}

func recordRetryDelay(ctx context.Context, cfg *config, attempt int, backoffDelay time.Duration) {
	if cfg.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperationType: cfg.operationType,
		labelAttemptNumber: fmt.Sprintf("%d", attempt),
	}

	if contextual, ok := cfg.metricsCollector.(observability.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, RetryDelayMetric, backoffDelay, labels)
	} else {
		cfg.metricsCollector.RecordDuration(RetryDelayMetric, backoffDelay, labels)
	}
}

func recordRetryAttempt(ctx context.Context, cfg *config, attempt int, lastErr error) {
	if attempt >= cfg.maxAttempts-1 || cfg.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperationType: cfg.operationType,
		labelAttemptNumber: fmt.Sprintf("%d", attempt+1),
		labelErrorType:     errorType(lastErr),
	}

	if contextual, ok := cfg.metricsCollector.(observability.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, RetriesMetric, labels)
	} else {
		cfg.metricsCollector.IncrementCounter(RetriesMetric, labels)
	}
}

func recordMaxRetriesReached(ctx context.Context, cfg *config, lastErr error) {
	if cfg.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		labelOperationType: cfg.operationType,
		"final_error_type": errorType(lastErr),
	}

	if contextual, ok := cfg.metricsCollector.(observability.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, MaxRetriesReachedMetric, labels)
	} else {
		cfg.metricsCollector.IncrementCounter(MaxRetriesReachedMetric, labels)
	}
}
