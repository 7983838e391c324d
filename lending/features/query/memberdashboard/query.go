package memberdashboard

import (
	"time"

	"github.com/google/uuid"
)

const (
	queryType = "MemberDashboard"
)

// Query represents the intent to look at a member's dashboard at a point in time.
type Query struct {
	MemberID uuid.UUID
	At       time.Time
}

// BuildQuery creates a new Query with the provided member ID and instant.
func BuildQuery(memberID uuid.UUID, at time.Time) Query {
	return Query{
		MemberID: memberID,
		At:       at,
	}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
