package core

import "time"

const (
	// LoanPeriod is the time a member may keep a borrowed copy before the loan is overdue.
	LoanPeriod = 15 * 24 * time.Hour

	// HoldPeriod is the time an active reservation stays valid before it expires.
	HoldPeriod = 7 * 24 * time.Hour

	// MaxActiveReservations is the number of ACTIVE reservations a member may hold at once.
	MaxActiveReservations = 3
)
