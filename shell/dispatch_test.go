package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/testutil/memstore"
)

func Test_NewDispatcher_Fails_OnUnknownEventType(t *testing.T) {
	// act
	_, err := shell.NewDispatcher(shell.Binding{EventType: "NoSuchEvent"})

	// assert
	assert.ErrorIs(t, err, shell.ErrUnknownEventType, "Bindings outside the closed event set must be rejected")
}

func Test_NewDefaultDispatcher_BindsDeltaHandlerToBookEvents(t *testing.T) {
	// act
	dispatcher, err := shell.NewDefaultDispatcher()

	// assert
	assert.NoError(t, err, "Default dispatcher should build")
	assert.Equal(t, 1, dispatcher.HandlerCount(core.BookAddedEventType), "BookAdded should feed the delta queue")
	assert.Equal(t, 1, dispatcher.HandlerCount(core.BookBorrowedEventType), "BookBorrowed should feed the delta queue")
	assert.Equal(t, 1, dispatcher.HandlerCount(core.BookReturnedEventType), "BookReturned should feed the delta queue")
	assert.Equal(t, 0, dispatcher.HandlerCount(core.AbonentRegisteredEventType), "AbonentRegistered has no statistics effect")
}

func Test_Dispatcher_Dispatch_DeliversInEventOrder_AndStopsAtFirstError(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	handlerErr := errors.New("handler failed")

	var seen []string
	recordingHandler := shell.EventHandlerFunc(func(_ context.Context, _ shell.TxRepositories, event core.DomainEvent) error {
		seen = append(seen, event.EventType())
		if event.EventType() == core.BookBorrowedEventType {
			return handlerErr
		}

		return nil
	})

	dispatcher, err := shell.NewDispatcher(
		shell.Binding{EventType: core.BookAddedEventType, Handlers: []shell.EventHandler{recordingHandler}},
		shell.Binding{EventType: core.BookBorrowedEventType, Handlers: []shell.EventHandler{recordingHandler}},
		shell.Binding{EventType: core.BookReturnedEventType, Handlers: []shell.EventHandler{recordingHandler}},
	)
	assert.NoError(t, err, "Dispatcher should build")

	date := core.PublicationDate{Year: 2017, Month: time.September, Day: 10}
	fakeClock := time.Unix(0, 0).UTC()
	bookID := uuid.New()
	events := core.DomainEvents{
		core.BuildBookAdded("Clean Architecture", "9780134494166", date, "Martin Robert", 1, fakeClock),
		core.BuildBookBorrowed(bookID, uuid.New(), "9780134494166", date, fakeClock.AddDate(0, 0, 30), fakeClock),
		core.BuildBookReturned(bookID, "9780134494166", date, fakeClock),
	}

	// act
	err = store.WithinTx(ctx, func(txCtx context.Context, tx shell.TxRepositories) error {
		return dispatcher.Dispatch(txCtx, tx, events)
	})

	// assert
	assert.ErrorIs(t, err, handlerErr, "Handler error should surface")
	assert.Equal(t, []string{core.BookAddedEventType, core.BookBorrowedEventType}, seen,
		"Dispatch should stop before the third event")
}

func Test_FinishUnitOfWork_ReducesBeforeDispatching(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	dispatcher, err := shell.NewDefaultDispatcher()
	assert.NoError(t, err, "Default dispatcher should build")

	recorder := &core.EventRecorder{}
	date := core.PublicationDate{Year: 2017, Month: time.September, Day: 10}
	fakeClock := time.Unix(0, 0).UTC()
	recorder.Record(core.BuildBookAdded("Clean Architecture", "9780134494166", date, "Martin Robert", 2, fakeClock))
	recorder.Record(core.BuildBookAdded("Clean Architecture", "9780134494166", date, "Martin Robert", 3, fakeClock))

	// act
	err = store.WithinTx(ctx, func(txCtx context.Context, tx shell.TxRepositories) error {
		return shell.FinishUnitOfWork(txCtx, tx, recorder, dispatcher)
	})

	// assert
	assert.NoError(t, err, "Unit of work should finish")
	assert.Equal(t, 0, recorder.Pending(), "Recorder should be drained")
	assert.Equal(t, 1, store.UnprocessedDeltaCount(), "Merged adds should queue a single delta")

	deltas, err := store.FetchUnprocessedDeltas(ctx, 10)
	assert.NoError(t, err, "Fetch should succeed")
	assert.Equal(t, 5, deltas[0].AvailableDelta, "Delta should carry the summed copy count")
}

func Test_FinishUnitOfWork_IsNoOp_WithoutEvents(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	dispatcher, err := shell.NewDefaultDispatcher()
	assert.NoError(t, err, "Default dispatcher should build")

	// act
	err = store.WithinTx(ctx, func(txCtx context.Context, tx shell.TxRepositories) error {
		return shell.FinishUnitOfWork(txCtx, tx, &core.EventRecorder{}, dispatcher)
	})

	// assert
	assert.NoError(t, err, "Empty recorder should finish cleanly")
	assert.Equal(t, 0, store.UnprocessedDeltaCount(), "Nothing should be queued")
}
