package core

import (
	"time"
)

// LoanMarkedOverdueEventType is the event type identifier.
const LoanMarkedOverdueEventType = "LoanMarkedOverdue"

// LoanMarkedOverdue represents when a sweep finds an ACTIVE loan past its due date.
type LoanMarkedOverdue struct {
	LoanID     LoanIDString
	BookID     BookIDString
	MemberID   MemberIDString
	DueAt      time.Time
	OccurredAt OccurredAt
}

// BuildLoanMarkedOverdue creates a new LoanMarkedOverdue event.
func BuildLoanMarkedOverdue(loan Loan, occurredAt time.Time) LoanMarkedOverdue {
	return LoanMarkedOverdue{
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		MemberID:   loan.MemberID,
		DueAt:      ToOccurredAt(loan.DueAt),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e LoanMarkedOverdue) IsEventType() string {
	return LoanMarkedOverdueEventType
}

// HasOccurredAt returns when this event occurred.
func (e LoanMarkedOverdue) HasOccurredAt() time.Time {
	return e.OccurredAt
}
