package overdueloans

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// OverdueLoan is one loan past its due date.
type OverdueLoan struct {
	LoanID      core.LoanIDString
	BookID      core.BookIDString
	Title       string
	MemberID    core.MemberIDString
	MemberName  string
	MemberEmail string
	BorrowedAt  time.Time
	DueAt       time.Time
	DaysOverdue int
	// MarkedBySweep is true if a sweep already persisted the OVERDUE status.
	MarkedBySweep bool
}

// OverdueLoans represents the query result.
type OverdueLoans struct {
	Loans          []OverdueLoan
	Count          int
	SequenceNumber uint
}

// GetSequenceNumber returns the highest sequence number the result includes.
func (r OverdueLoans) GetSequenceNumber() uint {
	return r.SequenceNumber
}
