package nozzle

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Hardware timing. The step delay bounds how often a single nozzle can be
// fired and must not be shortened.
const (
	StepDelay     = 800 * time.Microsecond
	PulseWidth    = 5 * time.Microsecond
	AddressSettle = 1 * time.Microsecond
)

// Waiter blocks the calling loop for a fixed duration.
type Waiter interface {
	Wait(d time.Duration)
}

// Spinner busy-waits on a monotonic clock. Sleeping would hand the thread
// back to the scheduler, which cannot wake it within a few microseconds.
type Spinner struct {
	clock clockwork.Clock
}

// NewSpinner returns a Spinner reading c, or the real clock when c is nil.
func NewSpinner(c clockwork.Clock) *Spinner {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Spinner{clock: c}
}

// Wait spins until d has elapsed.
func (s *Spinner) Wait(d time.Duration) {
	start := s.clock.Now()
	for s.clock.Since(start) < d {
	}
}
