package core

import "time"

// MemberRole is the role a member plays in the library.
type MemberRole string

const (
	// RoleMember is a regular library member who borrows and reserves books.
	RoleMember MemberRole = "member"

	// RoleLibrarian handles returns and loan follow-ups.
	RoleLibrarian MemberRole = "librarian"

	// RoleManager looks at library statistics.
	RoleManager MemberRole = "manager"
)

// Member is a registered library member. The engine only reads members, it never mutates them.
type Member struct {
	ID        MemberIDString
	FirstName string
	LastName  string
	Email     string
	Role      MemberRole
	JoinedAt  time.Time
}

// IsZero reports whether the member is the zero value, i.e. absent from a snapshot.
func (m Member) IsZero() bool {
	return m.ID == ""
}

// DisplayName returns "FirstName LastName".
func (m Member) DisplayName() string {
	if m.LastName == "" {
		return m.FirstName
	}

	return m.FirstName + " " + m.LastName
}
