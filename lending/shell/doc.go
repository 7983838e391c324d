// Package shell connects the pure lending rules to the event log.
//
// It maps domain events to storable events and back, runs actions and sweeps through the
// Query -> Unmarshal -> Project -> Apply -> Append cycle, retries on concurrency conflicts,
// and logs and counts every outcome.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'application' layer.
package shell
