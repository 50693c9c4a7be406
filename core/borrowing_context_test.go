package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
)

func Test_BuildBorrowingContext_ExposesBorrowerAndCount(t *testing.T) {
	// arrange
	borrowerID := uuid.New()

	// act
	bctx := core.BuildBorrowingContext(borrowerID, 2)

	// assert
	assert.Equal(t, borrowerID, bctx.BorrowerID(), "Should keep the borrower id")
	assert.Equal(t, 2, bctx.BorrowedCount(), "Should keep the loan count")
}

func Test_BuildBorrowingContext_Panics_OnNegativeCount(t *testing.T) {
	assert.Panics(t, func() {
		core.BuildBorrowingContext(uuid.New(), -1)
	}, "Negative loan count is a contract violation")
}
