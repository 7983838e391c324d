package coordinator

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
	"github.com/AntonStoeckl/library-lending/lending/loans"
	"github.com/AntonStoeckl/library-lending/lending/reservations"
)

// outcome is what a rule engine call contributes to a Result.
type outcome struct {
	snapshot    Snapshot
	loan        *core.Loan
	reservation *core.Reservation
	events      core.DomainEvents
}

// Apply runs one action against the snapshot at "now".
//
// The steps are always the same: validate the action, check that the referenced records are
// in the snapshot, sweep stale statuses, dispatch to the rule engine, verify the invariants on
// the resulting state. A rule violation is returned as a core.Rejection, a failed verification as
// ErrInvariantViolation joined with the details. In both cases the Result is empty and nothing
// must be persisted.
func Apply(action Action, snapshot Snapshot, now time.Time) (Result, error) {
	if err := Validate(action); err != nil {
		return Result{}, err
	}

	if err := checkPresent(action, snapshot); err != nil {
		return Result{}, err
	}

	swept, sweepEvents := sweepSnapshot(snapshot, now)

	o, err := dispatch(action, swept, now)
	if err != nil {
		return Result{}, err
	}

	if err = verify(snapshot, o.snapshot, now); err != nil {
		return Result{}, err
	}

	events := make(core.DomainEvents, 0, len(sweepEvents)+len(o.events))
	events = append(events, sweepEvents...)
	events = append(events, o.events...)
	o.events = events

	return buildResult(action.ActionType(), snapshot, o), nil
}

func checkPresent(action Action, snapshot Snapshot) error {
	if snapshot.Member.IsZero() || snapshot.Member.ID != action.MemberRef() {
		return core.Reject(core.ReasonMemberNotFound, "member "+action.MemberRef())
	}

	if snapshot.Book.IsZero() || snapshot.Book.ID != action.BookRef() {
		return core.Reject(core.ReasonBookNotFound, "book "+action.BookRef())
	}

	return nil
}

func dispatch(action Action, s Snapshot, now time.Time) (outcome, error) {
	switch a := action.(type) {
	case Borrow:
		return borrow(a, s, now)

	case Return:
		return returnLoan(a, s, now)

	case Reserve:
		return reserve(a, s, now)

	case CancelReservation:
		return cancelReservation(a, s, now)

	default:
		return outcome{}, core.Reject(core.ReasonInvalidAction, "unsupported action "+string(action.ActionType()))
	}
}

func borrow(a Borrow, s Snapshot, now time.Time) (outcome, error) {
	if _, taken := s.FindLoan(a.LoanID); taken {
		return outcome{}, core.Reject(core.ReasonInvalidAction, "loan ID "+a.LoanID+" is already in use")
	}

	borrowed, err := loans.Borrow(s.Member, s.Book, s.Loans, s.Reservations, a.LoanID, now)
	if err != nil {
		return outcome{}, err
	}

	post := s.withLoan(borrowed.Loan)
	if borrowed.ConvertedReservation != nil {
		post = post.withReservation(*borrowed.ConvertedReservation)
	}

	return outcome{
		snapshot:    post,
		loan:        &borrowed.Loan,
		reservation: borrowed.ConvertedReservation,
		events:      borrowed.Events,
	}, nil
}

func returnLoan(a Return, s Snapshot, now time.Time) (outcome, error) {
	loan, found := s.FindLoan(a.LoanID)
	if !found {
		return outcome{}, core.Reject(core.ReasonLoanNotFound, "loan "+a.LoanID)
	}

	returned, err := loans.ReturnLoan(loan, now)
	if err != nil {
		return outcome{}, err
	}

	return outcome{
		snapshot: s.withLoan(returned.Loan),
		loan:     &returned.Loan,
		events:   core.DomainEvents{returned.Event},
	}, nil
}

func reserve(a Reserve, s Snapshot, now time.Time) (outcome, error) {
	if _, taken := s.FindReservation(a.ReservationID); taken {
		return outcome{}, core.Reject(core.ReasonInvalidAction, "reservation ID "+a.ReservationID+" is already in use")
	}

	reserved, err := reservations.Reserve(
		s.Member,
		s.Book,
		s.MemberActiveReservations(),
		s.Loans,
		s.Reservations,
		a.ReservationID,
		now,
	)
	if err != nil {
		return outcome{}, err
	}

	return outcome{
		snapshot:    s.withReservation(reserved.Reservation),
		reservation: &reserved.Reservation,
		events:      core.DomainEvents{reserved.Event},
	}, nil
}

func cancelReservation(a CancelReservation, s Snapshot, now time.Time) (outcome, error) {
	reservation, found := s.FindReservation(a.ReservationID)
	if !found {
		return outcome{}, core.Reject(core.ReasonReservationNotFound, "reservation "+a.ReservationID)
	}

	cancelled, err := reservations.Cancel(reservation, now)
	if err != nil {
		return outcome{}, err
	}

	return outcome{
		snapshot:    s.withReservation(cancelled.Reservation),
		reservation: &cancelled.Reservation,
		events:      core.DomainEvents{cancelled.Event},
	}, nil
}

func buildResult(actionType ActionType, pre Snapshot, o outcome) Result {
	post := o.snapshot

	return Result{
		Action:       actionType,
		Snapshot:     post,
		Loan:         o.loan,
		Reservation:  o.reservation,
		Loans:        changedLoans(pre.Loans, post.Loans),
		Reservations: changedReservations(pre.allReservations(), post.allReservations()),
		Events:       o.events,
		Availability: availability.Resolve(post.Book, post.Loans, post.Reservations),
	}
}

func changedLoans(pre core.Loans, post core.Loans) core.Loans {
	before := make(map[core.LoanIDString]core.LoanStatus, len(pre))
	for _, loan := range pre {
		before[loan.ID] = loan.Status
	}

	changed := make(core.Loans, 0)

	for _, loan := range post {
		if status, found := before[loan.ID]; !found || status != loan.Status {
			changed = append(changed, loan)
		}
	}

	return changed
}

func changedReservations(pre core.Reservations, post core.Reservations) core.Reservations {
	before := make(map[core.ReservationIDString]core.ReservationStatus, len(pre))
	for _, reservation := range pre {
		before[reservation.ID] = reservation.Status
	}

	changed := make(core.Reservations, 0)

	for _, reservation := range post {
		if status, found := before[reservation.ID]; !found || status != reservation.Status {
			changed = append(changed, reservation)
		}
	}

	return changed
}
