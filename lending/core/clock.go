package core

import "time"

// Clock supplies the current instant.
// All time-dependent rules receive "now" from a Clock so that they stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time with microsecond precision.
func (SystemClock) Now() time.Time {
	return ToOccurredAt(time.Now())
}

// FixedClock always returns the same instant. It is meant for tests and replays.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now calls the function.
func (f ClockFunc) Now() time.Time {
	return f()
}
