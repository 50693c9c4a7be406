package addbook

import (
	"context"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/shell/retry"
)

// CommandHandler orchestrates the complete command processing workflow.
// It validates the ISBN, creates the book aggregate, persists it and
// finishes the unit of work so recorded events reach the dispatcher.
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
// It delegates the transactional work to executeCommand and retries on
// concurrency conflicts with exponential backoff.
// Returns HandlerResult containing business outcomes and execution metadata for observability.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := retry.WithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.executeCommand(retryCtx, command)
	}, shell.ConflictRetryOptions(h.retryOptions...)...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) error {
	isbn, err := core.BuildISBN(command.ISBN)
	if err != nil {
		return err
	}

	return h.uow.WithinTx(ctx, func(txCtx context.Context, tx shell.TxRepositories) error {
		recorder := &core.EventRecorder{}

		book, buildErr := core.NewBook(
			command.BookID,
			command.Title,
			isbn,
			command.PublicationDate,
			command.Authors,
			command.Copies,
			command.OccurredAt,
			recorder,
		)
		if buildErr != nil {
			return buildErr
		}

		if saveErr := tx.Books().SaveBook(txCtx, book); saveErr != nil {
			return saveErr
		}

		return shell.FinishUnitOfWork(txCtx, tx, recorder, h.dispatcher)
	})
}
