// Package oteladapters provides OpenTelemetry implementations of the
// observability interfaces, for plug-and-play logging, metrics and tracing
// without implementing the interfaces by hand.
package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/bookwyrm/lending-core-go/shell/observability"
)

// SlogBridgeLogger implements observability.ContextualLogger using the
// OpenTelemetry slog bridge. This is the recommended implementation: it
// provides automatic trace correlation and works with Go's standard log/slog.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a contextual logger using the OpenTelemetry
// slog bridge and the global LoggerProvider.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler creates a contextual logger over the provided
// slog.Handler. Note: this does NOT add OpenTelemetry trace correlation - it
// uses the handler as-is. For trace correlation, use NewSlogBridgeLogger.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler)}
}

// DebugContext logs a debug message with context.
func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context.
func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// Ensure SlogBridgeLogger implements observability.ContextualLogger.
var _ observability.ContextualLogger = (*SlogBridgeLogger)(nil)
