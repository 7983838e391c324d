// Package core contains the domain model of the lending engine:
// members borrowing and reserving books in a lending library.
//
// It holds the value records (Member, Book, Loan, Reservation), their status
// types, the lending policy constants, the typed rejection reasons returned by
// the rule engines, and the domain events that record every state transition.
//
// Book availability is intentionally absent from this package's records. It is
// derived from a book's loans and reservations by the availability package.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
