package engine

import "sync/atomic"

// LogicalClock is the seq-number source the runtime stamps records with.
// Satisfied by Clock and by the resettable test clock in testutil.
type LogicalClock interface {
	Next() int64
	Current() int64
}

// Clock is the monotonic logical clock stamping ledger records.
//
// Every invocation and completion gets a strictly increasing seq number,
// so record ordering never depends on wall-clock time and replay
// reproduces the original order exactly.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used by replay to resume from a stored position.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock's position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
