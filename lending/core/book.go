package core

// Book is a catalog entry with one or more physical copies.
//
// A Book deliberately carries no status field: whether it is available, on loan, or held
// is always derived from its loans and reservations.
type Book struct {
	ID          BookIDString
	Title       string
	Author      string
	Year        int
	Language    string
	Category    string
	CopiesTotal int
}

// IsZero reports whether the book is the zero value, i.e. absent from a snapshot.
func (b Book) IsZero() bool {
	return b.ID == ""
}

// Copies returns the number of physical copies, never less than one.
func (b Book) Copies() int {
	if b.CopiesTotal < 1 {
		return 1
	}

	return b.CopiesTotal
}
