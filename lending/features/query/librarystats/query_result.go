package librarystats

import "github.com/AntonStoeckl/library-lending/lending/core"

// BorrowedBook is one entry of the most borrowed books.
type BorrowedBook struct {
	BookID  core.BookIDString
	Title   string
	Author  string
	Borrows int
}

// LibraryStats represents the query result.
type LibraryStats struct {
	Books               int
	Copies              int
	Members             int
	Loans               int
	ActiveLoans         int
	OverdueLoans        int
	PendingReservations int
	MostBorrowed        []BorrowedBook
	SequenceNumber      uint
}

// GetSequenceNumber returns the highest sequence number the result includes.
func (r LibraryStats) GetSequenceNumber() uint {
	return r.SequenceNumber
}
