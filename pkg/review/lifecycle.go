package review

import "fmt"

// TransitionRule defines an allowed status transition.
type TransitionRule struct {
	From MaterialStatus
	To   MaterialStatus
}

// DefaultTransitions defines the allowed material status transitions.
// Approved is terminal for a given version; a fresh accepted upload to the
// same slot resets the material to pending, restarting review.
var DefaultTransitions = []TransitionRule{
	{From: StatusPending, To: StatusInReview},
	{From: StatusInReview, To: StatusApproved},
	{From: StatusInReview, To: StatusNeedsCorrection},
	{From: StatusNeedsCorrection, To: StatusPending},
	{From: StatusNeedsCorrection, To: StatusInReview},
}

// StatusMachine validates material status transitions.
type StatusMachine struct {
	transitions []TransitionRule
}

// NewStatusMachine creates a machine with default rules.
func NewStatusMachine() *StatusMachine {
	return &StatusMachine{transitions: DefaultTransitions}
}

// ValidateTransition checks if a transition from->to is allowed.
// Returns nil if allowed, an error with a machine-readable code if not.
func (m *StatusMachine) ValidateTransition(from, to MaterialStatus) error {
	// Same state is a no-op, allow it.
	if from == to {
		return nil
	}

	for _, t := range m.transitions {
		if t.From == from && t.To == to {
			return nil
		}
	}

	return &TransitionError{
		Code:    "STATUS_INVALID_TRANSITION",
		From:    from,
		To:      to,
		Message: fmt.Sprintf("no transition defined from %s to %s", from, to),
	}
}

// AllowedTransitions returns all valid target states from the given state.
func (m *StatusMachine) AllowedTransitions(from MaterialStatus) []MaterialStatus {
	var allowed []MaterialStatus
	for _, t := range m.transitions {
		if t.From == from {
			allowed = append(allowed, t.To)
		}
	}
	return allowed
}

// TransitionError is a structured error for invalid transitions.
type TransitionError struct {
	Code    string         `json:"code"`
	From    MaterialStatus `json:"from"`
	To      MaterialStatus `json:"to"`
	Message string         `json:"message"`
}

func (e *TransitionError) Error() string {
	return e.Message
}
