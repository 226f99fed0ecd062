package testfixtures

import (
	"sync"
	"time"
)

// Clock stands in for wall-clock time in tests that drive runlog.Store.
// cmd/planner fills a runlog.Record's StartedAt/FinishedAt from time.Now()
// in production; tests use Clock instead so a run's StartedAt/FinishedAt pair
// is reproducible and Advance can model a run's elapsed solve time without
// an actual sleep.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, the shared ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the clock's current instant, playing the role runlog.Record's
// StartedAt field needs from a time source.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d and returns the updated time, letting
// a test build a runlog.Record whose FinishedAt is a fixed offset past
// StartedAt instead of racing a real solve.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
