package returnbook

import (
	"context"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/shell/retry"
)

// CommandHandler orchestrates the complete command processing workflow.
// External wrappers handle all observability concerns.
type CommandHandler struct {
	uow          shell.UnitOfWork
	dispatcher   *shell.Dispatcher
	retryOptions []retry.Option
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...retry.Option) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(uow shell.UnitOfWork, dispatcher *shell.Dispatcher, opts ...Option) CommandHandler {
	handler := CommandHandler{
		uow:        uow,
		dispatcher: dispatcher,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the complete command processing workflow with retry logic.
// Returning an already available book reports an idempotent result, so
// clients can retry the command without special casing.
// Returns HandlerResult containing business outcomes and execution metadata for observability.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var isIdempotent bool

	retryMetrics, err := retry.WithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		idempotent, execErr := h.executeCommand(retryCtx, command)
		isIdempotent = idempotent

		return execErr
	}, shell.ConflictRetryOptions(h.retryOptions...)...)

	if isIdempotent {
		return shell.NewIdempotentResult(retryMetrics), err
	}

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (bool, error) {
	var isIdempotent bool

	err := h.uow.WithinTx(ctx, func(txCtx context.Context, tx shell.TxRepositories) error {
		book, loadErr := tx.Books().LoadBookByID(txCtx, command.BookID)
		if loadErr != nil {
			return loadErr
		}

		recorder := &core.EventRecorder{}

		result := book.Return(command.OccurredAt, recorder)
		if decideErr := result.HasError(); decideErr != nil {
			return decideErr
		}

		if result.Idempotent() {
			isIdempotent = true

			return nil
		}

		if saveErr := tx.Books().SaveBook(txCtx, book); saveErr != nil {
			return saveErr
		}

		return shell.FinishUnitOfWork(txCtx, tx, recorder, h.dispatcher)
	})

	return isIdempotent, err
}
