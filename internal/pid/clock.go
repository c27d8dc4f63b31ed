package pid

import "time"

// Clock is a monotonic time source. Readings are relative to an arbitrary
// epoch; only differences between readings are meaningful.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to. Used by tests and by the simulator,
// which drives it from simulation time.
type ManualClock struct {
	now time.Duration
}

func NewManualClock(start time.Duration) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Duration { return c.now }

func (c *ManualClock) Set(t time.Duration) { c.now = t }

func (c *ManualClock) Advance(d time.Duration) { c.now += d }
