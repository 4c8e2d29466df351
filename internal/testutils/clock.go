package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// NewMockClock creates a mock clock for testing
func NewMockClock(t testing.TB) *quartz.Mock {
	return quartz.NewMock(t)
}

// ClockWrapper wraps quartz.Mock to implement types.Clock. Every timer
// created through it is announced on Timers so a test can advance the mock
// only once the code under test is actually waiting.
type ClockWrapper struct {
	*quartz.Mock
	timers chan time.Duration
}

// NewClockWrapper creates a new ClockWrapper
func NewClockWrapper(mock *quartz.Mock) *ClockWrapper {
	return &ClockWrapper{Mock: mock, timers: make(chan time.Duration, 64)}
}

// Now returns the current time
func (c *ClockWrapper) Now() time.Time {
	return c.Mock.Now()
}

// Since returns the time elapsed since t
func (c *ClockWrapper) Since(t time.Time) time.Duration {
	return c.Mock.Since(t)
}

// NewTimer creates a new Timer
func (c *ClockWrapper) NewTimer(d time.Duration) types.Timer {
	timer := c.Mock.NewTimer(d)
	select {
	case c.timers <- d:
	default:
	}
	return &TimerWrapper{timer: timer}
}

// Timers delivers the duration of each timer as it is created
func (c *ClockWrapper) Timers() <-chan time.Duration {
	return c.timers
}

// AwaitTimer blocks until a timer is created and returns its duration
func (c *ClockWrapper) AwaitTimer(t testing.TB, ctx context.Context) time.Duration {
	t.Helper()
	select {
	case d := <-c.timers:
		return d
	case <-ctx.Done():
		t.Fatalf("no timer created: %v", ctx.Err())
		return 0
	}
}

// AdvanceTimer waits for the next timer and advances the mock past it
func (c *ClockWrapper) AdvanceTimer(t testing.TB, ctx context.Context) {
	t.Helper()
	d := c.AwaitTimer(t, ctx)
	c.Mock.Advance(d).MustWait(ctx)
}

// TimerWrapper wraps quartz timer
type TimerWrapper struct {
	timer *quartz.Timer
}

func (t *TimerWrapper) C() <-chan time.Time {
	return t.timer.C
}

func (t *TimerWrapper) Stop() bool {
	return t.timer.Stop()
}

func (t *TimerWrapper) Reset(d time.Duration) bool {
	return t.timer.Reset(d)
}
