package loans

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// ReclassifyOverdue is the periodic overdue sweep.
//
// It returns a copy of loans in which every ACTIVE loan with now > DueAt is OVERDUE,
// and one LoanMarkedOverdue event per reclassified loan.
// OVERDUE loans never go back to ACTIVE and RETURNED loans are never touched.
func ReclassifyOverdue(loans core.Loans, now time.Time) (core.Loans, core.DomainEvents) {
	swept := make(core.Loans, len(loans))
	events := make(core.DomainEvents, 0)

	for i, loan := range loans {
		if loan.Status == core.LoanStatusActive && now.After(loan.DueAt) {
			swept[i] = loan.WithStatus(core.LoanStatusOverdue)
			events = append(events, core.BuildLoanMarkedOverdue(loan, now))

			continue
		}

		swept[i] = loan
	}

	return swept, events
}
