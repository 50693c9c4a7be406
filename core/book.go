package core

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBorrowingPeriodDays is used when a borrow command supplies no return date.
	DefaultBorrowingPeriodDays = 30

	// MaxConcurrentLoansPerAbonent limits how many books one abonent may hold at once.
	MaxConcurrentLoansPerAbonent = 3
)

// Loan records the active borrowing of a book.
// Invariant: ReturnDue is strictly after BorrowedAt (date-only comparison).
type Loan struct {
	BorrowerID uuid.UUID
	BorrowedAt time.Time
	ReturnDue  time.Time
}

// Book is the aggregate owning the borrowing state of a catalog title.
//
// State machine: Available (Loan == nil) <-> Borrowed (Loan != nil).
// All mutations go through NewBook, Borrow and Return; each one records the
// domain events it raises on the supplied EventRecorder.
//
// Version is managed by the persistence layer for optimistic concurrency and
// carries no business meaning.
type Book struct {
	ID              uuid.UUID
	Title           string
	ISBN            ISBNString
	PublicationDate PublicationDate
	Authors         []Author
	Copies          uint
	Loan            *Loan
	Version         uint64
}

// NewBook creates a book aggregate with the given number of copies
// and records a single BookAdded event reporting the full count.
// A nil id is a caller contract violation and panics.
//
// Business Rules:
//
//	GIVEN: A title with ISBN, publication date and authors
//	WHEN: the title is added with a copy count
//	THEN: a BookAdded event with the supplied count is recorded
//	ERROR: MustHaveAuthors if the author list is empty
func NewBook(
	id uuid.UUID,
	title string,
	isbn ISBNString,
	publicationDate PublicationDate,
	authors []Author,
	copies uint,
	occurredAt time.Time,
	recorder *EventRecorder,
) (*Book, error) {

	if id == uuid.Nil {
		panic("NewBook: nil book id")
	}

	if len(authors) == 0 {
		return nil, ErrMustHaveAuthors
	}

	book := &Book{
		ID:              id,
		Title:           title,
		ISBN:            isbn,
		PublicationDate: publicationDate,
		Authors:         authors,
		Copies:          copies,
	}

	recorder.Record(BuildBookAdded(title, isbn, publicationDate, AuthorsLine(authors), copies, occurredAt))

	return book, nil
}

// IsBorrowed reports whether the book currently has an active loan.
func (b *Book) IsBorrowed() bool {
	return b.Loan != nil
}

// Borrow lends the book to the borrower described by bctx.
// A nil returnBefore defaults to borrowedAt + 30 days.
//
// Business Rules:
//
//	GIVEN: A book and a borrowing context with the borrower's active loan count
//	WHEN: Borrow is invoked
//	THEN: the book transitions to Borrowed and a BookBorrowed event is recorded
//	ERROR: InvalidBorrowingPeriod if returnBefore is not after borrowedAt (date-only)
//	ERROR: AlreadyBorrowed if the book is on loan to a different borrower
//	ERROR: TooManyBooksBorrowed if the borrower already holds 3 books
//	IDEMPOTENCY: If already borrowed by the same borrower, no event is recorded (no-op)
func (b *Book) Borrow(
	bctx BorrowingContext,
	borrowedAt time.Time,
	returnBefore *time.Time,
	recorder *EventRecorder,
) DecisionResult {

	due := borrowedAt.AddDate(0, 0, DefaultBorrowingPeriodDays)
	if returnBefore != nil {
		due = *returnBefore
	}

	if !dateOf(due).After(dateOf(borrowedAt)) {
		return ErrorDecision(ErrInvalidBorrowingPeriod)
	}

	if b.Loan != nil {
		if b.Loan.BorrowerID == bctx.BorrowerID() {
			return IdempotentDecision() // repeated borrow by the same abonent keeps the original loan
		}

		return ErrorDecision(ErrAlreadyBorrowed)
	}

	if bctx.BorrowedCount() >= MaxConcurrentLoansPerAbonent {
		return ErrorDecision(ErrTooManyBooksBorrowed)
	}

	b.Loan = &Loan{
		BorrowerID: bctx.BorrowerID(),
		BorrowedAt: borrowedAt,
		ReturnDue:  due,
	}

	recorder.Record(BuildBookBorrowed(b.ID, bctx.BorrowerID(), b.ISBN, b.PublicationDate, due, borrowedAt))

	return SuccessDecision()
}

// Return ends the active loan and records a BookReturned event.
//
// Business Rules:
//
//	GIVEN: A borrowed book
//	WHEN: Return is invoked
//	THEN: the book transitions to Available and a BookReturned event is recorded
//	IDEMPOTENCY: Returning an already available book is a no-op (safe under retry)
func (b *Book) Return(occurredAt time.Time, recorder *EventRecorder) DecisionResult {
	if b.Loan == nil {
		return IdempotentDecision()
	}

	b.Loan = nil

	recorder.Record(BuildBookReturned(b.ID, b.ISBN, b.PublicationDate, occurredAt))

	return SuccessDecision()
}

// dateOf truncates a timestamp to its UTC calendar date for date-only comparisons.
func dateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
