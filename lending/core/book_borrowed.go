package core

import (
	"time"
)

// BookBorrowedEventType is the event type identifier.
const BookBorrowedEventType = "BookBorrowed"

// BookBorrowed represents when a member borrows a copy of a book. OccurredAt is the borrow instant.
type BookBorrowed struct {
	LoanID     LoanIDString
	BookID     BookIDString
	MemberID   MemberIDString
	DueAt      time.Time
	OccurredAt OccurredAt
}

// BuildBookBorrowed creates a new BookBorrowed event from the loan it opened.
func BuildBookBorrowed(loan Loan) BookBorrowed {
	return BookBorrowed{
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		MemberID:   loan.MemberID,
		DueAt:      ToOccurredAt(loan.DueAt),
		OccurredAt: ToOccurredAt(loan.BorrowedAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookBorrowed) IsEventType() string {
	return BookBorrowedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookBorrowed) HasOccurredAt() time.Time {
	return e.OccurredAt
}
