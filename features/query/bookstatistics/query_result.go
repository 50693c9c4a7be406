package bookstatistics

import (
	"github.com/bookwyrm/lending-core-go/projection"
)

// Result carries the statistics row for one book title plus a flag telling
// whether the projector has materialized the title yet. Found false with a
// nil error means the title has no row, which is a regular outcome while
// the delta queue still holds unprocessed entries.
type Result struct {
	Statistics projection.BookStatistics
	Found      bool
}

// ListResult carries the statistics of every known title, ordered by title
// and ISBN.
type ListResult struct {
	Statistics []projection.BookStatistics
	Count      int
}
