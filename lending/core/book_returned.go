package core

import (
	"time"
)

// BookReturnedEventType is the event type identifier.
const BookReturnedEventType = "BookReturned"

// BookReturned represents when a borrowed copy comes back. OccurredAt is the return instant.
type BookReturned struct {
	LoanID     LoanIDString
	BookID     BookIDString
	MemberID   MemberIDString
	WasOverdue bool
	OccurredAt OccurredAt
}

// BuildBookReturned creates a new BookReturned event for the loan before it was closed.
func BuildBookReturned(loan Loan, occurredAt time.Time) BookReturned {
	return BookReturned{
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		MemberID:   loan.MemberID,
		WasOverdue: loan.Status == LoanStatusOverdue,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookReturned) IsEventType() string {
	return BookReturnedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookReturned) HasOccurredAt() time.Time {
	return e.OccurredAt
}
