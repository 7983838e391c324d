package catalog

import "github.com/AntonStoeckl/library-lending/lending/core"

// DecisionResult is the outcome of a catalog decision.
// Construct it with IdempotentDecision or SuccessDecision only.
type DecisionResult struct {
	Outcome string
	Event   core.DomainEvent // nil for idempotent decisions
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
)

// IdempotentDecision creates a DecisionResult indicating no state change is needed.
func IdempotentDecision() DecisionResult {
	return DecisionResult{Outcome: idempotentOutcome}
}

// SuccessDecision creates a DecisionResult with an event to append.
func SuccessDecision(event core.DomainEvent) DecisionResult {
	return DecisionResult{Outcome: successOutcome, Event: event}
}

// HasEventToAppend returns true if there is an event to append to the event log.
func (r DecisionResult) HasEventToAppend() bool {
	return r.Outcome == successOutcome
}
