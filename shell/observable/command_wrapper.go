// Package observable wraps command and query handlers with metrics, tracing
// and logging instrumentation, keeping the wrapped handlers free of
// observability concerns.
package observable

import (
	"context"
	"time"

	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/shell/observability"
)

// CommandWrapper provides observability instrumentation for any command handler.
// It wraps a core command handler and adds metrics, tracing and logging while
// delegating all business logic to the wrapped handler.
type CommandWrapper[C shell.Command] struct {
	coreHandler      shell.CoreCommandHandler[C]
	commandType      string
	metricsCollector observability.MetricsCollector
	tracingCollector observability.TracingCollector
	contextualLogger observability.ContextualLogger
}

// CommandOption defines a functional option for configuring CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C])

// WithCommandMetrics sets the metrics collector for the CommandWrapper.
func WithCommandMetrics[C shell.Command](collector observability.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) {
		w.metricsCollector = collector
	}
}

// WithCommandTracing sets the tracing collector for the CommandWrapper.
func WithCommandTracing[C shell.Command](collector observability.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) {
		w.tracingCollector = collector
	}
}

// WithCommandLogging sets the contextual logger for the CommandWrapper.
func WithCommandLogging[C shell.Command](logger observability.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) {
		w.contextualLogger = logger
	}
}

// NewCommandWrapper creates a new observable wrapper around the core command handler.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CoreCommandHandler[C],
	opts ...CommandOption[C],
) *CommandWrapper[C] {

	// Extract the command type from a zero-value instance
	var zeroCommand C
	wrapper := &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		opt(wrapper)
	}

	return wrapper
}

// Handle executes the wrapped handler with full instrumentation, translating
// the HandlerResult into metrics, span status and log lines.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	commandStart := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, w.tracingCollector, w.commandType)
	shell.LogCommandStart(ctx, w.contextualLogger, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)

	if err != nil {
		w.recordCommandError(ctx, err, time.Since(commandStart), span)
		return result, err
	}

	status := shell.StatusSuccess
	if result.Idempotent {
		status = shell.StatusIdempotent
	}

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, time.Since(commandStart))
	shell.FinishCommandSpan(w.tracingCollector, span, status, time.Since(commandStart), nil)
	shell.LogCommandSuccess(ctx, w.contextualLogger, w.commandType, status, time.Since(commandStart))

	return result, nil
}

// recordCommandError classifies the failure and records it.
func (w *CommandWrapper[C]) recordCommandError(
	ctx context.Context,
	err error,
	duration time.Duration,
	span observability.SpanContext,
) {

	status := shell.StatusError

	switch {
	case shell.IsCancellationError(err):
		status = shell.StatusCanceled
	case shell.IsTimeoutError(err):
		status = shell.StatusTimeout
	case shell.IsConcurrencyConflictError(err):
		status = shell.StatusConcurrencyConflict
	}

	shell.RecordCommandMetrics(ctx, w.metricsCollector, w.commandType, status, duration)
	shell.FinishCommandSpan(w.tracingCollector, span, status, duration, err)
	shell.LogCommandError(ctx, w.contextualLogger, w.commandType, err)
}
