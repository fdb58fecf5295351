package testutil

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"mediakit/internal/media"
)

// FixedTime is where FixedClock starts. Capture names derived from it carry
// the stamp 1705314600000.
var FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is a media.Clock that only moves when told to.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// Compile-time check that StubClock implements media.Clock interface
var _ media.Clock = (*StubClock)(nil)

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock at FixedTime.
func FixedClock() *StubClock {
	return NewStubClock(FixedTime)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward, e.g. to give a recording its length.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StubIDGenerator hands out "id-1", "id-2", ... in call order.
type StubIDGenerator struct {
	n atomic.Int64
}

// Compile-time check that StubIDGenerator implements media.IDGenerator interface
var _ media.IDGenerator = (*StubIDGenerator)(nil)

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	return "id-" + strconv.FormatInt(g.n.Add(1), 10)
}

