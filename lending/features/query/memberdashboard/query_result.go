package memberdashboard

import (
	"time"

	"github.com/AntonStoeckl/library-lending/lending/core"
)

// LoanInfo describes one loan of the member.
type LoanInfo struct {
	LoanID       core.LoanIDString
	BookID       core.BookIDString
	Title        string
	BorrowedAt   time.Time
	DueAt        time.Time
	DaysUntilDue int
}

// ReservationInfo describes one active reservation of the member.
type ReservationInfo struct {
	ReservationID core.ReservationIDString
	BookID        core.BookIDString
	Title         string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// MemberDashboard represents the query result.
type MemberDashboard struct {
	MemberID           core.MemberIDString
	DisplayName        string
	ActiveLoans        []LoanInfo
	OverdueLoans       []LoanInfo
	ActiveReservations []ReservationInfo
	ReturnedLoans      int
	SequenceNumber     uint
}

// GetSequenceNumber returns the highest sequence number the dashboard includes.
func (r MemberDashboard) GetSequenceNumber() uint {
	return r.SequenceNumber
}
