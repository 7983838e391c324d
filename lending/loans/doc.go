// Package loans implements the loan rule engine: borrowing, returning and the overdue sweep.
//
// Like package reservations, everything here is a pure function over records and "now".
package loans
