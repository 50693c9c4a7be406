package core

import (
	"fmt"

	"github.com/google/uuid"
)

// BorrowingContext is a transient, immutable value constructed fresh per borrow
// attempt from a live count of the borrower's active loans. It is never persisted.
type BorrowingContext struct {
	borrowerID    uuid.UUID
	borrowedCount int
}

// BuildBorrowingContext constructs a borrowing context.
// A negative borrowedCount is a caller contract violation, not a business
// error, and panics.
func BuildBorrowingContext(borrowerID uuid.UUID, borrowedCount int) BorrowingContext {
	if borrowedCount < 0 {
		panic(fmt.Sprintf("BuildBorrowingContext: negative borrowed count %d for borrower %s", borrowedCount, borrowerID))
	}

	return BorrowingContext{
		borrowerID:    borrowerID,
		borrowedCount: borrowedCount,
	}
}

// BorrowerID returns the borrower's identifier.
func (c BorrowingContext) BorrowerID() uuid.UUID {
	return c.borrowerID
}

// BorrowedCount returns how many books the borrower currently has on loan.
func (c BorrowingContext) BorrowedCount() int {
	return c.borrowedCount
}
