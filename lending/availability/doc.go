// Package availability derives whether a book can be borrowed right now.
//
// Availability is never stored on a Book. Resolve computes it from the book's loans and
// reservations every time, so a denormalized flag can never drift from the records it summarizes.
package availability
