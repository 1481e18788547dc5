// Package testutil provides shared helpers for the gateway test suites.
package testutil

import (
	"sync"
	"time"
)

// Clock is a mutable time source for TTL and window tests. Inject Clock.Now
// into a kvstore.MemoryStore via kvstore.WithClock and advance it instead of
// sleeping.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a Clock fixed at an arbitrary stable instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the clock's current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
