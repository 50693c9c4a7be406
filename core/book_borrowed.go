package core

import (
	"time"

	"github.com/google/uuid"
)

// BookBorrowedEventType is the event type identifier.
const BookBorrowedEventType = "BookBorrowed"

// BookBorrowed represents when a book is borrowed by an abonent.
// ISBN and PublicationDate identify the statistics read-model row the
// downstream projection has to touch.
type BookBorrowed struct {
	BookID          BookIDString
	BorrowerID      AbonentIDString
	ISBN            ISBNString
	PublicationDate PublicationDate
	DueDate         time.Time
	OccurredAt      OccurredAtTS
}

// BuildBookBorrowed creates a new BookBorrowed event.
func BuildBookBorrowed(
	bookID uuid.UUID,
	borrowerID uuid.UUID,
	isbn ISBNString,
	publicationDate PublicationDate,
	dueDate time.Time,
	occurredAt time.Time,
) BookBorrowed {

	event := BookBorrowed{
		BookID:          bookID.String(),
		BorrowerID:      borrowerID.String(),
		ISBN:            isbn,
		PublicationDate: publicationDate,
		DueDate:         dueDate,
		OccurredAt:      ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e BookBorrowed) EventType() string {
	return BookBorrowedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookBorrowed) HasOccurredAt() time.Time {
	return e.OccurredAt
}
