package testutil

import (
	"strconv"
	"sync"
	"time"

	"hg-go/internal/hg"
)

// StubClock is a manually driven hg.Clock.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ hg.Clock = (*StubClock)(nil)

// FixedClock returns a StubClock set to Saturday 2025-06-14 09:30 local time.
// Water logs key on local dates, so the zone must be time.Local.
func FixedClock() *StubClock {
	return &StubClock{now: time.Date(2025, 6, 14, 9, 30, 0, 0, time.Local)}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NextDay moves the clock to the same wall time on the following calendar day.
func (c *StubClock) NextDay() {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, 1)
	c.mu.Unlock()
}

// StubIDGenerator hands out "id-1", "id-2", ... in call order.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

var _ hg.IDGenerator = (*StubIDGenerator)(nil)

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return "id-" + strconv.Itoa(g.next)
}
