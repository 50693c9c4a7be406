package core

// DecisionResult represents the outcome of a business decision on an aggregate.
//
// IMPORTANT: DecisionResult should only be constructed using the provided factory
// methods: IdempotentDecision(), SuccessDecision(), or ErrorDecision(err).
type DecisionResult struct {
	outcome string
	err     error
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	errorOutcome      = "error"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision() DecisionResult {
	return DecisionResult{outcome: idempotentOutcome}
}

// SuccessDecision creates a DecisionResult indicating a successful state change.
func SuccessDecision() DecisionResult {
	return DecisionResult{outcome: successOutcome}
}

// ErrorDecision creates a DecisionResult indicating a business rule violation.
func ErrorDecision(err error) DecisionResult {
	return DecisionResult{outcome: errorOutcome, err: err}
}

// Changed returns true if the decision mutated aggregate state.
func (r DecisionResult) Changed() bool {
	return r.outcome == successOutcome
}

// Idempotent returns true if no state change was needed.
func (r DecisionResult) Idempotent() bool {
	return r.outcome == idempotentOutcome
}

// HasError returns the business rule violation if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.outcome == errorOutcome {
		return r.err
	}

	return nil
}
