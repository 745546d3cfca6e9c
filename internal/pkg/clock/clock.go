package clock

import (
	"sync/atomic"
	"time"
)

// Clock is injected wherever a timestamp ends up in the database or in an order id.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewRealClock() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is safe for use from concurrent booking attempts in tests.
type MockClock struct {
	now atomic.Pointer[time.Time]
}

func NewMockClock(t time.Time) *MockClock {
	c := &MockClock{}
	c.Set(t)
	return c
}

func (c *MockClock) Now() time.Time {
	return *c.now.Load()
}

func (c *MockClock) Set(t time.Time) {
	c.now.Store(&t)
}
