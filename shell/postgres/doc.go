// Package postgres implements the unit of work, the aggregate repositories,
// the statistics delta queue and the read-model store on PostgreSQL.
//
// SQL is built with goqu and executed through a small DBAdapter interface
// with pgx and sqlx implementations, so the same repository code runs over
// either driver. Books carry a version column for optimistic concurrency;
// conflicting saves surface as shell.ErrConcurrencyConflict and are retried
// by the command handlers.
package postgres
