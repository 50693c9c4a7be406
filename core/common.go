package core

import (
	"strings"
	"time"
)

// Instead of implementing full value objects for every identifier, alias types
// and small helpers keep the domain signatures readable.

// BookIDString represents a book identifier in event payloads.
type BookIDString = string

// AbonentIDString represents an abonent identifier in event payloads.
type AbonentIDString = string

// ISBNString represents a validated ISBN in event payloads.
type ISBNString = string

// OccurredAtTS represents when an event occurred.
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to an event timestamp with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// PublicationDate is a calendar date without a time component.
// It is comparable and therefore usable as a grouping key.
type PublicationDate struct {
	Year  int
	Month time.Month
	Day   int
}

// PublicationDateOf extracts the calendar date from a timestamp.
func PublicationDateOf(t time.Time) PublicationDate {
	year, month, day := t.UTC().Date()

	return PublicationDate{Year: year, Month: month, Day: day}
}

// Time returns the date as a UTC midnight timestamp.
func (d PublicationDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String renders the date in ISO 8601 format (YYYY-MM-DD).
func (d PublicationDate) String() string {
	return d.Time().Format("2006-01-02")
}

// IsZero reports whether the date is the zero value.
func (d PublicationDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Author holds the full name of a book author.
type Author struct {
	Name       string
	Surname    string
	Patronymic string
}

// String renders the author as "Surname Name Patronymic", skipping empty parts.
func (a Author) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Surname, a.Name, a.Patronymic} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " ")
}

// AuthorsLine renders a list of authors as a single comma-separated line,
// the denormalized form carried by events and the statistics read model.
func AuthorsLine(authors []Author) string {
	rendered := make([]string, 0, len(authors))
	for _, a := range authors {
		rendered = append(rendered, a.String())
	}

	return strings.Join(rendered, ", ")
}
