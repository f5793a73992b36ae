// Package clock abstracts wall-clock time so the 72-hour cancellation
// window, today's slot filtering and credit expiry can be tested with
// fixed timestamps.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.T }

// At builds a fixed clock for tests.
func At(t time.Time) Fixed { return Fixed{T: t} }
