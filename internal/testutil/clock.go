// Package testutil holds deterministic stand-ins for the runtime's
// injectable collaborators: a resettable logical clock and fixed flow
// token generators. Content-addressed record ids depend on flow token
// and seq, so tests that want stable ids wire these in.
package testutil

import "sync"

// DeterministicClock is a resettable logical clock. Unlike engine.Clock
// it can be rewound, so one scenario can run repeatedly with identical
// seq values (and therefore identical record ids).
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock starting at 0. The first Next()
// returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
