package loans

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// Returned is the outcome of a successful ReturnLoan.
type Returned struct {
	Loan  core.Loan
	Event core.BookReturned
}

// ReturnLoan closes an open loan, no matter whether it is ACTIVE or OVERDUE.
// A second return of the same loan is rejected, not silently accepted.
//
//	ERROR: ALREADY_RETURNED if the loan is RETURNED
func ReturnLoan(loan core.Loan, now time.Time) (Returned, error) {
	if loan.Status == core.LoanStatusReturned {
		return Returned{}, core.Reject(core.ReasonAlreadyReturned, "loan "+loan.ID+" was returned before")
	}

	return Returned{
		Loan:  loan.WithReturnedAt(now),
		Event: core.BuildBookReturned(loan, now),
	}, nil
}
