package game

import (
	"sync"
	"time"
)

// Clock provides the time reference for step gating and effect lifetimes
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real monotonic clock
type SystemClock struct{}

// Now returns the current time with monotonic clock reading
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FakeClock provides a controllable time source for testing
type FakeClock struct {
	mu          sync.RWMutex
	currentTime time.Time
}

// NewFakeClock creates a fake clock stopped at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{currentTime: start}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// Advance moves the fake time forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}
