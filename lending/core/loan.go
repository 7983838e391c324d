package core

import (
	"math"
	"time"
)

// LoanStatus is the stored lifecycle status of a Loan.
type LoanStatus string

const (
	// LoanStatusActive means the copy is out and not yet due.
	LoanStatusActive LoanStatus = "ACTIVE"

	// LoanStatusOverdue means the copy is out and the due date has passed.
	LoanStatusOverdue LoanStatus = "OVERDUE"

	// LoanStatusReturned means the copy came back. Terminal.
	LoanStatusReturned LoanStatus = "RETURNED"
)

// Loans is a slice of Loan records.
type Loans = []Loan

// Loan records a member borrowing one copy of a book.
// Loans are never deleted, returned loans stay as lending history.
type Loan struct {
	ID         LoanIDString
	BookID     BookIDString
	MemberID   MemberIDString
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	Status     LoanStatus
}

// BuildActiveLoan creates an ACTIVE loan borrowed at "now" and due one LoanPeriod later.
func BuildActiveLoan(loanID LoanIDString, bookID BookIDString, memberID MemberIDString, now time.Time) Loan {
	return Loan{
		ID:         loanID,
		BookID:     bookID,
		MemberID:   memberID,
		BorrowedAt: now,
		DueAt:      now.Add(LoanPeriod),
		Status:     LoanStatusActive,
	}
}

// IsOpen reports whether the copy is still out, i.e. the loan is ACTIVE or OVERDUE.
func (l Loan) IsOpen() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusOverdue
}

// IsOverdueAt reports whether the loan is open and past its due date at "now",
// regardless of whether a sweep has reclassified it yet.
func (l Loan) IsOverdueAt(now time.Time) bool {
	return l.IsOpen() && now.After(l.DueAt)
}

// DaysUntilDue returns the number of days left until the due date, rounded up.
// The result is zero or negative once the due date has passed.
func (l Loan) DaysUntilDue(now time.Time) int {
	remaining := l.DueAt.Sub(now)

	return int(math.Ceil(remaining.Hours() / 24))
}

// WithStatus returns a copy of the loan with the given status.
func (l Loan) WithStatus(status LoanStatus) Loan {
	l.Status = status

	return l
}

// WithReturnedAt returns a copy of the loan marked RETURNED at "now".
func (l Loan) WithReturnedAt(now time.Time) Loan {
	returnedAt := now
	l.ReturnedAt = &returnedAt
	l.Status = LoanStatusReturned

	return l
}
