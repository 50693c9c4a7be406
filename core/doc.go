// Package core contains the pure domain logic of the lending library:
// the Book and Abonent aggregates, the borrowing policy, the closed set of
// domain events with their recorder, and the event reducer.
//
// Nothing in this package performs I/O. Aggregate methods validate, mutate
// state, and record events; persistence, dispatch and projections live in the
// shell and projection packages.
package core
