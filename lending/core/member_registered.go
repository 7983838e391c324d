package core

import (
	"time"

	"github.com/google/uuid"
)

// MemberRegisteredEventType is the event type identifier.
const MemberRegisteredEventType = "MemberRegistered"

// MemberRegistered represents when a person joins the library.
type MemberRegistered struct {
	MemberID   MemberIDString
	FirstName  string
	LastName   string
	Email      string
	Role       string
	OccurredAt OccurredAt
}

// BuildMemberRegistered creates a new MemberRegistered event.
func BuildMemberRegistered(
	memberID uuid.UUID,
	firstName string,
	lastName string,
	email string,
	role MemberRole,
	occurredAt time.Time,
) MemberRegistered {

	return MemberRegistered{
		MemberID:   memberID.String(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Role:       string(role),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e MemberRegistered) IsEventType() string {
	return MemberRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e MemberRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}
