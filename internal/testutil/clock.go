package testutil

import (
	"sync"
	"time"
)

// FakeClock is a hand-driven wall clock for tests.
//
// Now returns the same instant until the test moves it with Advance or Set,
// so preview deltas are exact. Set may move the clock backwards to exercise
// clamping of negative deltas.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Epoch is the default start instant of a FakeClock.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewFakeClock creates a clock reading Epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: Epoch}
}

// Now returns the current fake instant. Pass c.Now where a func() time.Time
// is expected.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t, which may be earlier than the current instant.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset moves the clock back to Epoch.
func (c *FakeClock) Reset() {
	c.Set(Epoch)
}
