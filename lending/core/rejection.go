package core

import "errors"

// Reason is the machine-readable tag of a rejected action.
type Reason string

const (
	// ReasonCapacityExceeded means the member already holds MaxActiveReservations reservations.
	ReasonCapacityExceeded Reason = "CAPACITY_EXCEEDED"

	// ReasonDuplicateReservation means the member already holds an active reservation for the book.
	ReasonDuplicateReservation Reason = "DUPLICATE_RESERVATION"

	// ReasonAlreadyBorrowed means the member already has an unreturned loan for the book.
	ReasonAlreadyBorrowed Reason = "ALREADY_BORROWED"

	// ReasonAlreadyReturned means the loan was returned before.
	ReasonAlreadyReturned Reason = "ALREADY_RETURNED"

	// ReasonNotActive means the reservation is not ACTIVE anymore.
	ReasonNotActive Reason = "NOT_ACTIVE"

	// ReasonUnavailable means every copy of the book is out.
	ReasonUnavailable Reason = "UNAVAILABLE"

	// ReasonReservedByOther means the free copies are held for other members.
	ReasonReservedByOther Reason = "RESERVED_BY_OTHER"

	// ReasonBookUnavailableForHold means the book is out with, or held for, someone else.
	ReasonBookUnavailableForHold Reason = "BOOK_UNAVAILABLE_FOR_HOLD"

	// ReasonMemberNotFound means the acting member is missing from the snapshot.
	ReasonMemberNotFound Reason = "MEMBER_NOT_FOUND"

	// ReasonBookNotFound means the book is missing from the snapshot.
	ReasonBookNotFound Reason = "BOOK_NOT_FOUND"

	// ReasonLoanNotFound means the loan is missing from the snapshot.
	ReasonLoanNotFound Reason = "LOAN_NOT_FOUND"

	// ReasonReservationNotFound means the reservation is missing from the snapshot.
	ReasonReservationNotFound Reason = "RESERVATION_NOT_FOUND"

	// ReasonInvalidAction means the action input failed validation.
	ReasonInvalidAction Reason = "INVALID_ACTION"

	// ReasonInvariantViolation means a post-action consistency check failed. It signals a defect.
	ReasonInvariantViolation Reason = "INVARIANT_VIOLATION"
)

// Category groups reasons by how a caller is expected to react.
type Category string

const (
	// CategoryLimit covers user-correctable limit errors, surfaced verbatim.
	CategoryLimit Category = "limit"

	// CategoryConflict covers availability conflicts ("try again later / pick another copy").
	CategoryConflict Category = "conflict"

	// CategoryNotFound covers records missing from the snapshot.
	CategoryNotFound Category = "not_found"

	// CategoryInvalid covers malformed input.
	CategoryInvalid Category = "invalid"

	// CategoryInternal covers defects. Fatal for the current request only.
	CategoryInternal Category = "internal"
)

// Category returns the category of the reason.
func (r Reason) Category() Category {
	switch r {
	case ReasonCapacityExceeded, ReasonDuplicateReservation, ReasonAlreadyBorrowed, ReasonAlreadyReturned, ReasonNotActive:
		return CategoryLimit
	case ReasonUnavailable, ReasonReservedByOther, ReasonBookUnavailableForHold:
		return CategoryConflict
	case ReasonMemberNotFound, ReasonBookNotFound, ReasonLoanNotFound, ReasonReservationNotFound:
		return CategoryNotFound
	case ReasonInvalidAction:
		return CategoryInvalid
	default:
		return CategoryInternal
	}
}

// Rejection is the typed failure value returned by the rule engines.
//
// Two rejections match with errors.Is when their reasons are equal, so callers can write
// errors.Is(err, core.ErrCapacityExceeded) no matter which detail was attached.
type Rejection struct {
	Reason Reason
	Detail string
}

// Reject builds a Rejection with a human-readable detail.
func Reject(reason Reason, detail string) Rejection {
	return Rejection{Reason: reason, Detail: detail}
}

// Error implements the error interface.
func (r Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}

	return string(r.Reason) + ": " + r.Detail
}

// Is matches any Rejection with the same Reason.
func (r Rejection) Is(target error) bool {
	var other Rejection
	if !errors.As(target, &other) {
		return false
	}

	return other.Reason == r.Reason
}

// ReasonOf extracts the Reason of a Rejection anywhere in err's chain.
// It returns "" and false if err carries no Rejection.
func ReasonOf(err error) (Reason, bool) {
	var rejection Rejection
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}

	return "", false
}

var (
	// ErrCapacityExceeded matches rejections with ReasonCapacityExceeded.
	ErrCapacityExceeded = Rejection{Reason: ReasonCapacityExceeded}

	// ErrDuplicateReservation matches rejections with ReasonDuplicateReservation.
	ErrDuplicateReservation = Rejection{Reason: ReasonDuplicateReservation}

	// ErrAlreadyBorrowed matches rejections with ReasonAlreadyBorrowed.
	ErrAlreadyBorrowed = Rejection{Reason: ReasonAlreadyBorrowed}

	// ErrAlreadyReturned matches rejections with ReasonAlreadyReturned.
	ErrAlreadyReturned = Rejection{Reason: ReasonAlreadyReturned}

	// ErrNotActive matches rejections with ReasonNotActive.
	ErrNotActive = Rejection{Reason: ReasonNotActive}

	// ErrUnavailable matches rejections with ReasonUnavailable.
	ErrUnavailable = Rejection{Reason: ReasonUnavailable}

	// ErrReservedByOther matches rejections with ReasonReservedByOther.
	ErrReservedByOther = Rejection{Reason: ReasonReservedByOther}

	// ErrBookUnavailableForHold matches rejections with ReasonBookUnavailableForHold.
	ErrBookUnavailableForHold = Rejection{Reason: ReasonBookUnavailableForHold}

	// ErrMemberNotFound matches rejections with ReasonMemberNotFound.
	ErrMemberNotFound = Rejection{Reason: ReasonMemberNotFound}

	// ErrBookNotFound matches rejections with ReasonBookNotFound.
	ErrBookNotFound = Rejection{Reason: ReasonBookNotFound}

	// ErrLoanNotFound matches rejections with ReasonLoanNotFound.
	ErrLoanNotFound = Rejection{Reason: ReasonLoanNotFound}

	// ErrReservationNotFound matches rejections with ReasonReservationNotFound.
	ErrReservationNotFound = Rejection{Reason: ReasonReservationNotFound}

	// ErrInvalidAction matches rejections with ReasonInvalidAction.
	ErrInvalidAction = Rejection{Reason: ReasonInvalidAction}
)
