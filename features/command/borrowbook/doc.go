// Package borrowbook implements the Borrow Book use case.
//
// An abonent may borrow an available book for a bounded period and may
// hold at most three books at once. Borrowing a book one already holds
// is a safe no-op, which makes the command retryable by clients.
package borrowbook
