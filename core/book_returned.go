package core

import (
	"time"

	"github.com/google/uuid"
)

// BookReturnedEventType is the event type identifier.
const BookReturnedEventType = "BookReturned"

// BookReturned represents when a borrowed book is returned to the library.
type BookReturned struct {
	BookID          BookIDString
	ISBN            ISBNString
	PublicationDate PublicationDate
	OccurredAt      OccurredAtTS
}

// BuildBookReturned creates a new BookReturned event.
func BuildBookReturned(
	bookID uuid.UUID,
	isbn ISBNString,
	publicationDate PublicationDate,
	occurredAt time.Time,
) BookReturned {

	event := BookReturned{
		BookID:          bookID.String(),
		ISBN:            isbn,
		PublicationDate: publicationDate,
		OccurredAt:      ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e BookReturned) EventType() string {
	return BookReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}
