// Package shell contains the infrastructure surrounding the pure domain core:
// the unit-of-work and repository contracts, the closed event dispatcher with
// its statistics-delta handler, retry glue for the write path, and the
// observability helpers shared by command and query handlers.
package shell
