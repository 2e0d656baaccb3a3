package testutil

import (
	"sync"
	"time"

	"photobroom/internal/catalog"
)

// CatalogEpoch is the time FixedClock starts at.
var CatalogEpoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a catalog.Clock that only moves when a test moves it.
type StubClock struct {
	mu  sync.RWMutex
	now time.Time
}

var _ catalog.Clock = (*StubClock)(nil)

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock standing at CatalogEpoch.
func FixedClock() *StubClock { return NewStubClock(CatalogEpoch) }

func (c *StubClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by d, so later change log entries get
// later timestamps.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
