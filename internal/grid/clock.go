package grid

import (
	"sync/atomic"
	"time"
)

// Clock stamps change records and commands.
//
// Next supplies the logical sequence used for ordering; Now supplies the
// wall-clock timestamp that is informational only. Ordering never depends on
// Now.
type Clock interface {
	Next() int64
	Now() time.Time
}

// LogicalClock is the default Clock: an atomic sequence plus time.Now.
type LogicalClock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *LogicalClock {
	return &LogicalClock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
func NewClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}

// Now returns the current UTC time.
func (c *LogicalClock) Now() time.Time {
	return time.Now().UTC()
}
