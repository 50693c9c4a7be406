package projection

import (
	"github.com/bookwyrm/lending-core-go/core"
)

// Delta is a durable statistics change queued transactionally alongside the
// aggregate mutation that caused it. Deltas are append-only: once enqueued
// they are only read and then marked processed, never updated.
type Delta struct {
	ISBN            core.ISBNString
	PublicationDate core.PublicationDate
	Title           string
	Authors         string
	AvailableDelta  int
	BorrowedDelta   int
}

// QueuedDelta is a Delta as it sits in the durable queue, with its queue identity.
type QueuedDelta struct {
	ID int64
	Delta
}

// DeltaFromEvent maps a reduced domain event to the statistics delta it
// implies. Events that do not affect the statistics read model (such as
// AbonentRegistered) yield ok == false.
func DeltaFromEvent(event core.DomainEvent) (Delta, bool) {
	switch e := event.(type) {
	case core.BookAdded:
		return Delta{
			ISBN:            e.ISBN,
			PublicationDate: e.PublicationDate,
			Title:           e.Title,
			Authors:         e.Authors,
			AvailableDelta:  int(e.Count),
		}, true

	case core.BookBorrowed:
		return Delta{
			ISBN:            e.ISBN,
			PublicationDate: e.PublicationDate,
			AvailableDelta:  -1,
			BorrowedDelta:   1,
		}, true

	case core.BookReturned:
		return Delta{
			ISBN:            e.ISBN,
			PublicationDate: e.PublicationDate,
			AvailableDelta:  1,
			BorrowedDelta:   -1,
		}, true

	default:
		return Delta{}, false
	}
}
