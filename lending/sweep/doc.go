// Package sweep persists the time-driven status changes of loans and reservations.
//
// The rule engines evaluate overdue loans and expired holds lazily on every action, so state is
// correct without the scheduler. The scheduler makes it visible for books nobody touches: it
// periodically finds every book with open loans or active reservations and sweeps each one
// through the command handler.
package sweep
