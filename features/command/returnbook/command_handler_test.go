package returnbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/features/command/addbook"
	"github.com/bookwyrm/lending-core-go/features/command/borrowbook"
	"github.com/bookwyrm/lending-core-go/features/command/registerabonent"
	"github.com/bookwyrm/lending-core-go/features/command/returnbook"
	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/testutil/memstore"
)

func setupBorrowedBook(ctx context.Context, t *testing.T) (*memstore.Store, *shell.Dispatcher, uuid.UUID) {
	t.Helper()

	store := memstore.NewStore()
	dispatcher, err := shell.NewDefaultDispatcher()
	assert.NoError(t, err, "Should create default dispatcher")

	abonentID := uuid.New()
	_, err = registerabonent.NewCommandHandler(store, dispatcher).
		Handle(ctx, registerabonent.BuildCommand(abonentID, "Test Abonent", "abonent@example.org", time.Unix(0, 0).UTC()))
	assert.NoError(t, err, "Should register abonent")

	bookID := uuid.New()
	addCommand := addbook.BuildCommand(
		bookID,
		"Clean Architecture",
		"9780134494166",
		core.PublicationDate{Year: 2017, Month: time.September, Day: 10},
		[]core.Author{{Name: "Robert", Surname: "Martin"}},
		1,
		time.Unix(0, 0).UTC(),
	)
	_, err = addbook.NewCommandHandler(store, dispatcher).Handle(ctx, addCommand)
	assert.NoError(t, err, "Should add book")

	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	_, err = borrowbook.NewCommandHandler(store, dispatcher).
		Handle(ctx, borrowbook.BuildCommand(bookID, abonentID, nil, borrowedAt))
	assert.NoError(t, err, "Should borrow book")

	return store, dispatcher, bookID
}

func Test_CommandHandler_Handle_ReturnsBookAndEnqueuesDelta(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, dispatcher, bookID := setupBorrowedBook(ctx, t)
	handler := returnbook.NewCommandHandler(store, dispatcher)

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommand(bookID, time.Date(2026, time.March, 8, 12, 0, 0, 0, time.UTC)))

	// assert
	assert.NoError(t, err, "Return should succeed")
	assert.False(t, result.Idempotent, "Returning a borrowed book is a state change")
	assert.Equal(t, 3, store.UnprocessedDeltaCount(), "Add, borrow and return deltas should be queued")

	err = store.WithinTx(ctx, func(txCtx context.Context, tx shell.TxRepositories) error {
		book, loadErr := tx.Books().LoadBookByID(txCtx, bookID)
		assert.NoError(t, loadErr, "Book should be loadable")
		assert.False(t, book.IsBorrowed(), "Book should be available again")

		return nil
	})
	assert.NoError(t, err, "Read transaction should succeed")
}

func Test_CommandHandler_Handle_IsIdempotent_WhenBookIsAlreadyAvailable(t *testing.T) {
	// arrange
	ctx := context.Background()
	store, dispatcher, bookID := setupBorrowedBook(ctx, t)
	handler := returnbook.NewCommandHandler(store, dispatcher)

	_, err := handler.Handle(ctx, returnbook.BuildCommand(bookID, time.Date(2026, time.March, 8, 12, 0, 0, 0, time.UTC)))
	assert.NoError(t, err, "First return should succeed")
	queuedBefore := store.UnprocessedDeltaCount()

	// act
	result, err := handler.Handle(ctx, returnbook.BuildCommand(bookID, time.Date(2026, time.March, 8, 13, 0, 0, 0, time.UTC)))

	// assert
	assert.NoError(t, err, "Repeated return should not fail")
	assert.True(t, result.Idempotent, "Returning an available book is a no-op")
	assert.Equal(t, queuedBefore, store.UnprocessedDeltaCount(), "No additional delta should be queued")
}

func Test_CommandHandler_Handle_Fails_WhenBookIsUnknown(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	dispatcher, err := shell.NewDefaultDispatcher()
	assert.NoError(t, err, "Should create default dispatcher")
	handler := returnbook.NewCommandHandler(store, dispatcher)

	// act
	_, err = handler.Handle(ctx, returnbook.BuildCommand(uuid.New(), time.Unix(0, 0).UTC()))

	// assert
	assert.ErrorIs(t, err, core.ErrBookNotFound, "Unknown book should be rejected")
}
