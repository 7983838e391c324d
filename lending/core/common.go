package core

import (
	"time"
)

// Instead of implementing full value objects, I'm using some alias types and helper methods here ...

// BookIDString represents a book identifier
type BookIDString = string

// MemberIDString represents a member identifier
type MemberIDString = string

// LoanIDString represents a loan identifier
type LoanIDString = string

// ReservationIDString represents a reservation identifier
type ReservationIDString = string

// EventTypeString represents a domain event type identifier
type EventTypeString = string

// OccurredAt represents when an event occurred
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}
