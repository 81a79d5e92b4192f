package journal

import "sync/atomic"

// Clock is the monotonic logical clock that stamps commands within one
// session. Sequence numbers start at 1 and never repeat.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start. Used when appending
// to a session written by an earlier process.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
