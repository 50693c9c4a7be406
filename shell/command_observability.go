package shell

import (
	"context"
	"time"

	"github.com/bookwyrm/lending-core-go/shell/observability"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"
	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// QueryHandlerDurationMetric tracks query handler execution duration.
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"
	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// StatusSuccess indicates successful command completion.
	StatusSuccess = "success"
	// StatusError indicates a command processing error.
	StatusError = "error"
	// StatusIdempotent indicates no state change was needed.
	StatusIdempotent = "idempotent"
	// StatusCanceled indicates the operation was canceled.
	StatusCanceled = "canceled"
	// StatusTimeout indicates the operation exceeded its deadline.
	StatusTimeout = "timeout"
	// StatusConcurrencyConflict indicates an optimistic concurrency failure.
	StatusConcurrencyConflict = "concurrency_conflict"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command handler started"
	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command handler completed"
	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command handler failed"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"
	// LogAttrStatus indicates the command processing status.
	LogAttrStatus = "status"
	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"
	// LogAttrError contains error details.
	LogAttrError = "error"

	// SpanNameCommandHandle is the tracing span name for command handling.
	SpanNameCommandHandle = "commandhandler.handle"
	// SpanNameQueryHandle is the tracing span name for query handling.
	SpanNameQueryHandle = "queryhandler.handle"
)

// Command represents the contract for all command types.
// The CommandType method enables polymorphic handling and observability
// instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler defines the contract for components that process commands
// with pure business logic. Implementations focus on orchestration inside one
// unit of work; the observable package wraps them with instrumentation.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records duration and call-count metrics for one command
// operation, preferring the context-aware collector when available.
func RecordCommandMetrics(
	ctx context.Context,
	collector observability.MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)

	if contextual, ok := collector.(observability.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, CommandHandlerDurationMetric, duration, labels)
		contextual.IncrementCounterContext(ctx, CommandHandlerCallsMetric, labels)
		return
	}

	collector.RecordDuration(CommandHandlerDurationMetric, duration, labels)
	collector.IncrementCounter(CommandHandlerCallsMetric, labels)
}

// StartCommandSpan starts a tracing span for command handling when a tracing
// collector is configured; otherwise it returns the context unchanged and a
// nil span.
func StartCommandSpan(
	ctx context.Context,
	tracing observability.TracingCollector,
	commandType string,
) (context.Context, observability.SpanContext) {

	if tracing == nil {
		return ctx, nil
	}

	return tracing.StartSpan(ctx, SpanNameCommandHandle, map[string]string{
		LogAttrCommandType: commandType,
	})
}

// FinishCommandSpan finishes a tracing span with status and duration attributes.
func FinishCommandSpan(
	tracing observability.TracingCollector,
	span observability.SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	if tracing == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: durationAttr(duration),
	}
	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracing.FinishSpan(span, status, attrs)
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger observability.ContextualLogger, commandType string) {
	if logger != nil {
		logger.DebugContext(ctx, LogMsgCommandStarted, LogAttrCommandType, commandType)
	}
}

// LogCommandSuccess logs a completed command with its business outcome.
func LogCommandSuccess(
	ctx context.Context,
	logger observability.ContextualLogger,
	commandType string,
	status string,
	duration time.Duration,
) {

	if logger != nil {
		logger.InfoContext(ctx, LogMsgCommandCompleted,
			LogAttrCommandType, commandType,
			LogAttrStatus, status,
			LogAttrDurationMS, ToMilliseconds(duration),
		)
	}
}

// LogCommandError logs a failed command.
func LogCommandError(ctx context.Context, logger observability.ContextualLogger, commandType string, err error) {
	if logger != nil {
		logger.ErrorContext(ctx, LogMsgCommandFailed,
			LogAttrCommandType, commandType,
			LogAttrError, err.Error(),
		)
	}
}

func durationAttr(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
