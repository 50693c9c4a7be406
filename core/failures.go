package core

import "errors"

// BusinessRuleError represents an expected, recoverable business-rule violation.
// Callers branch on the named kind; the HTTP layer maps kinds to status codes.
// Programmer errors (malformed identifiers, negative counts) are not business
// errors and panic instead.
type BusinessRuleError struct {
	kind   string
	reason string
}

// Error returns the human-readable failure reason.
func (e BusinessRuleError) Error() string {
	return e.reason
}

// Kind returns the stable failure-kind identifier.
func (e BusinessRuleError) Kind() string {
	return e.kind
}

// The closed set of business-rule failures.
var (
	ErrBookNotFound           = BusinessRuleError{kind: "BookNotFound", reason: "book not found"}
	ErrAbonentNotFound        = BusinessRuleError{kind: "AbonentNotFound", reason: "abonent not found"}
	ErrAlreadyBorrowed        = BusinessRuleError{kind: "AlreadyBorrowed", reason: "book is already borrowed by another abonent"}
	ErrTooManyBooksBorrowed   = BusinessRuleError{kind: "TooManyBooksBorrowed", reason: "abonent has too many books on loan"}
	ErrInvalidBorrowingPeriod = BusinessRuleError{kind: "InvalidBorrowingPeriod", reason: "return date must be after the borrow date"}
	ErrMustHaveAuthors        = BusinessRuleError{kind: "MustHaveAuthors", reason: "book must have at least one author"}
	ErrInvalidEmail           = BusinessRuleError{kind: "InvalidEmail", reason: "email address has an invalid format"}
	ErrInvalidISBN            = BusinessRuleError{kind: "InvalidISBN", reason: "isbn has an invalid format"}
)

// FailureKind extracts the stable kind identifier from an error chain.
// It returns false when the error is not a business-rule violation.
func FailureKind(err error) (string, bool) {
	var bre BusinessRuleError
	if errors.As(err, &bre) {
		return bre.kind, true
	}

	return "", false
}
