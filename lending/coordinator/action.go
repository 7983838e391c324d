package coordinator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// ActionType names the user actions the coordinator accepts.
type ActionType string

const (
	ActionBorrow            ActionType = "BORROW"
	ActionReturn            ActionType = "RETURN"
	ActionReserve           ActionType = "RESERVE"
	ActionCancelReservation ActionType = "CANCEL_RESERVATION"

	// ActionSweep is the type reported in a Result produced by Sweep.
	ActionSweep ActionType = "SWEEP"
)

// Action is one validated input to Apply.
type Action interface {
	ActionType() ActionType

	// BookRef is the book the action is about. It scopes the snapshot.
	BookRef() core.BookIDString

	// MemberRef is the member the action is performed for.
	MemberRef() core.MemberIDString
}

// Borrow asks to lend a copy of BookID to MemberID, creating the loan LoanID.
type Borrow struct {
	MemberID core.MemberIDString `validate:"required,uuid"`
	BookID   core.BookIDString   `validate:"required,uuid"`
	LoanID   core.LoanIDString   `validate:"required,uuid"`
}

// Return asks to close the loan LoanID of BookID.
type Return struct {
	MemberID core.MemberIDString `validate:"required,uuid"`
	BookID   core.BookIDString   `validate:"required,uuid"`
	LoanID   core.LoanIDString   `validate:"required,uuid"`
}

// Reserve asks to place the hold ReservationID on BookID for MemberID.
type Reserve struct {
	MemberID      core.MemberIDString      `validate:"required,uuid"`
	BookID        core.BookIDString        `validate:"required,uuid"`
	ReservationID core.ReservationIDString `validate:"required,uuid"`
}

// CancelReservation asks to give up the hold ReservationID on BookID.
type CancelReservation struct {
	MemberID      core.MemberIDString      `validate:"required,uuid"`
	BookID        core.BookIDString        `validate:"required,uuid"`
	ReservationID core.ReservationIDString `validate:"required,uuid"`
}

// NewBorrow builds a Borrow with a fresh time-ordered loan ID.
func NewBorrow(memberID core.MemberIDString, bookID core.BookIDString) Borrow {
	return Borrow{MemberID: memberID, BookID: bookID, LoanID: newID()}
}

// NewReserve builds a Reserve with a fresh time-ordered reservation ID.
func NewReserve(memberID core.MemberIDString, bookID core.BookIDString) Reserve {
	return Reserve{MemberID: memberID, BookID: bookID, ReservationID: newID()}
}

// ActionType implements Action.
func (a Borrow) ActionType() ActionType {
	return ActionBorrow
}

// BookRef implements Action.
func (a Borrow) BookRef() core.BookIDString {
	return a.BookID
}

// MemberRef implements Action.
func (a Borrow) MemberRef() core.MemberIDString {
	return a.MemberID
}

// ActionType implements Action.
func (a Return) ActionType() ActionType {
	return ActionReturn
}

// BookRef implements Action.
func (a Return) BookRef() core.BookIDString {
	return a.BookID
}

// MemberRef implements Action.
func (a Return) MemberRef() core.MemberIDString {
	return a.MemberID
}

// ActionType implements Action.
func (a Reserve) ActionType() ActionType {
	return ActionReserve
}

// BookRef implements Action.
func (a Reserve) BookRef() core.BookIDString {
	return a.BookID
}

// MemberRef implements Action.
func (a Reserve) MemberRef() core.MemberIDString {
	return a.MemberID
}

// ActionType implements Action.
func (a CancelReservation) ActionType() ActionType {
	return ActionCancelReservation
}

// BookRef implements Action.
func (a CancelReservation) BookRef() core.BookIDString {
	return a.BookID
}

// MemberRef implements Action.
func (a CancelReservation) MemberRef() core.MemberIDString {
	return a.MemberID
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the action's input fields and rejects with INVALID_ACTION.
func Validate(action Action) error {
	if action == nil {
		return core.Reject(core.ReasonInvalidAction, "no action given")
	}

	if err := validate.Struct(action); err != nil {
		return core.Reject(core.ReasonInvalidAction, err.Error())
	}

	return nil
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
