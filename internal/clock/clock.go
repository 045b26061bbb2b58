package clock

import "time"

// Clock supplies current time. Components take it as a dependency so
// date-sensitive policies can be tested without waiting for midnight.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a Clock pinned to one instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
