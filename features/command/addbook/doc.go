// Package addbook implements the Add Book use case.
//
// This feature registers new copies of a book title in the library.
// The handler validates the ISBN, builds the aggregate through the pure
// core constructor and persists it inside a single transaction together
// with the statistics deltas derived from the recorded BookAdded event.
package addbook
