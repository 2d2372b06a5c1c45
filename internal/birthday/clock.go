package birthday

import "time"

// Clock abstracts time.Now() so callers can be tested against a fixed
// date.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
