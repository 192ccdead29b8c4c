package utils

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the single time source for every temporal decision in the engine.
// clockwork.Clock and *clockwork.FakeClock both satisfy it.
type Clock interface {
	Now() time.Time
}

// NewClock returns the wall clock.
func NewClock() Clock {
	return clockwork.NewRealClock()
}
