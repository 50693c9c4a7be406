package core

import (
	"time"
)

// BookAddedEventType is the event type identifier.
const BookAddedEventType = "BookAdded"

// BookAdded represents when one or more copies of a title are added to the catalog.
// Count reports the true total of copies added; the reducer collapses BookAdded
// events sharing the same (title, isbn, publication date) into a single event
// with a summed count.
type BookAdded struct {
	Title           string
	ISBN            ISBNString
	PublicationDate PublicationDate
	Authors         string
	Count           uint
	OccurredAt      OccurredAtTS
}

// BuildBookAdded creates a new BookAdded event.
func BuildBookAdded(
	title string,
	isbn ISBNString,
	publicationDate PublicationDate,
	authors string,
	count uint,
	occurredAt time.Time,
) BookAdded {

	event := BookAdded{
		Title:           title,
		ISBN:            isbn,
		PublicationDate: publicationDate,
		Authors:         authors,
		Count:           count,
		OccurredAt:      ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e BookAdded) EventType() string {
	return BookAddedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookAdded) HasOccurredAt() time.Time {
	return e.OccurredAt
}
