// Package reservations implements the reservation rule engine: placing, cancelling,
// expiring and converting holds.
//
// All functions are pure. They take records and "now" and return updated copies of
// the records together with the domain events describing the transition, or a
// core.Rejection. Nothing here reads a clock or touches storage.
package reservations
