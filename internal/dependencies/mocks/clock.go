package mocks

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
)

// MockClock is a controllable Clock for testing.
// Timers created through After fire only when the clock is advanced past them.
type MockClock struct {
	*clockwork.FakeClock
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{FakeClock: clockwork.NewFakeClockAt(t)}
}

// Set moves the clock to the given time. Moving backwards is ignored.
func (c *MockClock) Set(t time.Time) {
	if d := t.Sub(c.Now()); d > 0 {
		c.Advance(d)
	}
}
