// Package testdoubles provides spies for the logging and metrics interfaces of the event log
// and the lending shell.
//
//   - MetricsCollectorSpy captures metric calls.
//   - ContextualLoggerSpy captures log calls, with or without context.
package testdoubles
