package projection

import (
	"github.com/bookwyrm/lending-core-go/core"
)

// Key identifies one statistics read-model row.
type Key struct {
	ISBN            core.ISBNString
	PublicationDate core.PublicationDate
}

// BookStatistics is the denormalized, eventually consistent read model of
// available and borrowed counts per title. The projector is its only writer.
type BookStatistics struct {
	ISBN            core.ISBNString
	PublicationDate core.PublicationDate
	Title           string
	Authors         string
	AvailableCount  int
	BorrowedCount   int
}

// StatisticsKey returns the read-model key of the statistics row.
func (s BookStatistics) StatisticsKey() Key {
	return Key{ISBN: s.ISBN, PublicationDate: s.PublicationDate}
}
