package shell

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
)

// BookRepository loads and stores Book aggregates.
// LoadBookByID returns core.ErrBookNotFound (wrapped) when the id is unknown.
// SaveBook performs an optimistic version check and returns
// ErrConcurrencyConflict when the stored version moved.
type BookRepository interface {
	LoadBookByID(ctx context.Context, id uuid.UUID) (*core.Book, error)
	SaveBook(ctx context.Context, book *core.Book) error
	CountActiveLoans(ctx context.Context, borrowerID uuid.UUID) (int, error)
}

// AbonentRepository loads and stores Abonent aggregates.
// LoadAbonentByID returns core.ErrAbonentNotFound (wrapped) when the id is unknown.
type AbonentRepository interface {
	LoadAbonentByID(ctx context.Context, id uuid.UUID) (*core.Abonent, error)
	SaveAbonent(ctx context.Context, abonent *core.Abonent) error
}

// DeltaQueue enqueues statistics deltas durably, within the surrounding
// transaction's commit.
type DeltaQueue interface {
	Enqueue(ctx context.Context, deltas ...projection.Delta) error
}

// TxRepositories exposes the transaction-scoped repositories a use case works
// with inside one unit of work. Everything obtained from it joins the same
// database transaction.
type TxRepositories interface {
	Books() BookRepository
	Abonents() AbonentRepository
	Deltas() DeltaQueue
}

// UnitOfWork runs a use case inside one atomic transaction: load, mutate,
// collect events, enqueue deltas, commit. A returned error rolls everything
// back; there are no partial commits.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}

// FinishUnitOfWork drains the recorder, reduces the batch and dispatches the
// reduced events synchronously within the same transaction scope. Use cases
// call it as the last step inside WithinTx, after all aggregate mutations.
func FinishUnitOfWork(
	ctx context.Context,
	tx TxRepositories,
	recorder *core.EventRecorder,
	dispatcher *Dispatcher,
) error {

	reduced := core.Reduce(recorder.Drain())
	if len(reduced) == 0 {
		return nil
	}

	return dispatcher.Dispatch(ctx, tx, reduced)
}
