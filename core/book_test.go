package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
)

func newTestBook(t *testing.T, recorder *core.EventRecorder) *core.Book {
	t.Helper()

	book, err := core.NewBook(
		uuid.New(),
		"Clean Architecture",
		"9780134494166",
		core.PublicationDate{Year: 2017, Month: time.September, Day: 10},
		[]core.Author{{Name: "Robert", Surname: "Martin"}},
		1,
		time.Unix(0, 0).UTC(),
		recorder,
	)
	assert.NoError(t, err, "Should create test book")

	return book
}

func Test_NewBook_RecordsSingleBookAddedEvent_WithFullCopyCount(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	fakeClock := time.Unix(0, 0).UTC()

	// act
	book, err := core.NewBook(
		uuid.New(),
		"Clean Architecture",
		"9780134494166",
		core.PublicationDate{Year: 2017, Month: time.September, Day: 10},
		[]core.Author{{Name: "Robert", Surname: "Martin"}},
		3,
		fakeClock,
		recorder,
	)

	// assert
	assert.NoError(t, err, "Should create the book")
	assert.Equal(t, uint(3), book.Copies, "Should keep the copy count")
	assert.False(t, book.IsBorrowed(), "New book should be available")
	assert.Equal(t, uint64(0), book.Version, "Unsaved aggregate should have version 0")

	events := recorder.Drain()
	assert.Len(t, events, 1, "Should record exactly one event")

	added, ok := events[0].(core.BookAdded)
	assert.True(t, ok, "Recorded event should be BookAdded")
	assert.Equal(t, uint(3), added.Count, "Event should carry the full copy count")
	assert.Equal(t, "Martin Robert", added.Authors, "Event should carry the denormalized authors line")
}

func Test_NewBook_Fails_WhenAuthorListIsEmpty(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}

	// act
	_, err := core.NewBook(
		uuid.New(),
		"Anonymous Work",
		"9780134494166",
		core.PublicationDate{Year: 2017, Month: time.September, Day: 10},
		nil,
		1,
		time.Unix(0, 0).UTC(),
		recorder,
	)

	// assert
	assert.ErrorIs(t, err, core.ErrMustHaveAuthors, "Should reject a book without authors")
	assert.Equal(t, 0, recorder.Pending(), "No event should be recorded on failure")
}

func Test_NewBook_Panics_WhenIDIsNil(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = core.NewBook(
			uuid.Nil,
			"Clean Architecture",
			"9780134494166",
			core.PublicationDate{Year: 2017, Month: time.September, Day: 10},
			[]core.Author{{Name: "Robert", Surname: "Martin"}},
			1,
			time.Unix(0, 0).UTC(),
			&core.EventRecorder{},
		)
	}, "Nil id is a contract violation")
}

func Test_Borrow_TransitionsToBorrowed_AndRecordsEvent(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	recorder.Drain()
	borrowerID := uuid.New()
	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	// act
	result := book.Borrow(core.BuildBorrowingContext(borrowerID, 0), borrowedAt, nil, recorder)

	// assert
	assert.True(t, result.Changed(), "Borrow should change the aggregate")
	assert.True(t, book.IsBorrowed(), "Book should be on loan")
	assert.Equal(t, borrowerID, book.Loan.BorrowerID, "Loan should belong to the borrower")
	assert.Equal(t, borrowedAt.AddDate(0, 0, 30), book.Loan.ReturnDue, "Default borrowing period should be 30 days")

	events := recorder.Drain()
	assert.Len(t, events, 1, "Should record exactly one event")

	borrowed, ok := events[0].(core.BookBorrowed)
	assert.True(t, ok, "Recorded event should be BookBorrowed")
	assert.Equal(t, borrowerID.String(), borrowed.BorrowerID, "Event should carry the borrower id")
}

func Test_Borrow_IsIdempotent_WhenSameBorrowerBorrowsAgain(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	borrowerID := uuid.New()
	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	book.Borrow(core.BuildBorrowingContext(borrowerID, 0), borrowedAt, nil, recorder)
	recorder.Drain()
	originalDue := book.Loan.ReturnDue

	// act
	result := book.Borrow(core.BuildBorrowingContext(borrowerID, 1), borrowedAt.Add(time.Hour), nil, recorder)

	// assert
	assert.True(t, result.Idempotent(), "Repeated borrow by the same abonent should be a no-op")
	assert.Equal(t, 0, recorder.Pending(), "No event should be recorded")
	assert.Equal(t, originalDue, book.Loan.ReturnDue, "Original loan should stay untouched")
}

func Test_Borrow_Fails_WhenBookIsLentToAnotherBorrower(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	book.Borrow(core.BuildBorrowingContext(uuid.New(), 0), borrowedAt, nil, recorder)
	recorder.Drain()

	// act
	result := book.Borrow(core.BuildBorrowingContext(uuid.New(), 0), borrowedAt.Add(time.Hour), nil, recorder)

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrAlreadyBorrowed, "Should reject a second borrower")
	assert.Equal(t, 0, recorder.Pending(), "No event should be recorded")
}

func Test_Borrow_Fails_WhenBorrowerHoldsMaximumBooks(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	recorder.Drain()
	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	// act
	result := book.Borrow(core.BuildBorrowingContext(uuid.New(), 3), borrowedAt, nil, recorder)

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrTooManyBooksBorrowed, "Should enforce the loan limit")
	assert.False(t, book.IsBorrowed(), "Book should stay available")
}

func Test_Borrow_Succeeds_WhenBorrowerHoldsOneBelowMaximum(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	recorder.Drain()
	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	// act
	result := book.Borrow(core.BuildBorrowingContext(uuid.New(), 2), borrowedAt, nil, recorder)

	// assert
	assert.True(t, result.Changed(), "Two active loans should still allow a third")
}

func Test_Borrow_Fails_WhenReturnDateIsNotAfterBorrowDate(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	recorder.Drain()
	borrowedAt := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	sameDayLater := time.Date(2026, time.March, 1, 23, 0, 0, 0, time.UTC)

	// act
	result := book.Borrow(core.BuildBorrowingContext(uuid.New(), 0), borrowedAt, &sameDayLater, recorder)

	// assert
	assert.ErrorIs(t, result.HasError(), core.ErrInvalidBorrowingPeriod,
		"A return due on the same calendar day is not a valid period")
	assert.False(t, book.IsBorrowed(), "Book should stay available")
}

func Test_Borrow_Succeeds_WhenReturnDateIsNextCalendarDay(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	recorder.Drain()
	borrowedAt := time.Date(2026, time.March, 1, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC)

	// act
	result := book.Borrow(core.BuildBorrowingContext(uuid.New(), 0), borrowedAt, &nextDay, recorder)

	// assert
	assert.True(t, result.Changed(), "One calendar day is the minimal valid period")
	assert.Equal(t, nextDay, book.Loan.ReturnDue, "Explicit return date should override the default period")
}

func Test_Return_TransitionsToAvailable_AndRecordsEvent(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	borrowedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	book.Borrow(core.BuildBorrowingContext(uuid.New(), 0), borrowedAt, nil, recorder)
	recorder.Drain()

	// act
	result := book.Return(borrowedAt.AddDate(0, 0, 7), recorder)

	// assert
	assert.True(t, result.Changed(), "Return should change the aggregate")
	assert.False(t, book.IsBorrowed(), "Book should be available again")

	events := recorder.Drain()
	assert.Len(t, events, 1, "Should record exactly one event")
	assert.Equal(t, core.BookReturnedEventType, events[0].EventType(), "Recorded event should be BookReturned")
}

func Test_Return_IsIdempotent_WhenBookIsAlreadyAvailable(t *testing.T) {
	// arrange
	recorder := &core.EventRecorder{}
	book := newTestBook(t, recorder)
	recorder.Drain()

	// act
	result := book.Return(time.Unix(0, 0).UTC(), recorder)

	// assert
	assert.True(t, result.Idempotent(), "Returning an available book should be a no-op")
	assert.Equal(t, 0, recorder.Pending(), "No event should be recorded")
}
