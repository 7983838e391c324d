package catalogavailability

import (
	"github.com/AntonStoeckl/library-lending/lending/availability"
	"github.com/AntonStoeckl/library-lending/lending/core"
)

// BookAvailability is one catalog entry with its derived status.
type BookAvailability struct {
	BookID      core.BookIDString
	Title       string
	Author      string
	Year        int
	Language    string
	Category    string
	CopiesTotal int
	Status      availability.Status
	FreeCopies  int
	OnLoan      int
	Holds       int
}

// CatalogAvailability represents the query result.
type CatalogAvailability struct {
	Books          []BookAvailability
	Count          int
	SequenceNumber uint
}

// GetSequenceNumber returns the highest sequence number the result includes.
func (r CatalogAvailability) GetSequenceNumber() uint {
	return r.SequenceNumber
}
