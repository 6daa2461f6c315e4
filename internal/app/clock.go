package app

import "time"

// RequestIndicatorDelay is how long the "requesting" indicator stays on
// after a mentorship request completed.
const RequestIndicatorDelay = time.Second

// Clock provides timers. Tests swap it for one they control.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemClock returns the wall clock
func SystemClock() Clock {
	return realClock{}
}
