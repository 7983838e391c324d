// Package catalogavailability projects every catalog book with its availability at a point in time.
//
// Availability is never stored. It is derived from the book's loans and reservations after
// reclassifying overdue loans and expired holds at the query instant, the same way an action would.
package catalogavailability
