package bookstatistics

import (
	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
)

const (
	queryType = "BookStatistics"
)

// Query represents the intent to read the statistics of one book title,
// identified by ISBN and publication date.
type Query struct {
	ISBN            core.ISBNString
	PublicationDate core.PublicationDate
}

// BuildQuery creates a new Query with the provided title identity.
func BuildQuery(isbn core.ISBNString, publicationDate core.PublicationDate) Query {
	return Query{
		ISBN:            isbn,
		PublicationDate: publicationDate,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}

// Key returns the read model key this query addresses.
func (q Query) Key() projection.Key {
	return projection.Key{ISBN: q.ISBN, PublicationDate: q.PublicationDate}
}
