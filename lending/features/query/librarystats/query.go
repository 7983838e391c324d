package librarystats

import "time"

const (
	queryType = "LibraryStats"

	// DefaultTopN is the number of most borrowed books listed when the query names none.
	DefaultTopN = 5
)

// Query represents the intent to summarize the library at At.
// A non-zero BorrowedSince ranks MostBorrowed by the borrows between BorrowedSince and At only.
type Query struct {
	At            time.Time
	TopN          int
	BorrowedSince time.Time
}

// BuildQuery creates a new Query. A non-positive topN means DefaultTopN.
func BuildQuery(at time.Time, topN int) Query {
	if topN <= 0 {
		topN = DefaultTopN
	}

	return Query{At: at, TopN: topN}
}

// WithBorrowedSince returns a copy of the query that ranks only the borrows since since.
func (q Query) WithBorrowedSince(since time.Time) Query {
	q.BorrowedSince = since

	return q
}

// HasBorrowWindow reports whether MostBorrowed is ranked over a time window.
func (q Query) HasBorrowWindow() bool {
	return !q.BorrowedSince.IsZero()
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
