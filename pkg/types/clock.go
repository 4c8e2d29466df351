package types

import "time"

// Clock is the time source for stop timeouts and admission backoff. Tests
// substitute a mock so waits can be driven deterministically.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration

	// NewTimer starts a one-shot timer firing after d
	NewTimer(d time.Duration) Timer
}

// Timer is a one-shot timer. Stop and Reset follow time.Timer.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

// RealClock reads the wall clock
type RealClock struct{}

// NewRealClock returns the wall clock
func NewRealClock() Clock {
	return RealClock{}
}

// Now implements Clock
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since implements Clock
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// NewTimer implements Clock
func (RealClock) NewTimer(d time.Duration) Timer {
	return stdTimer{time.NewTimer(d)}
}

type stdTimer struct {
	*time.Timer
}

func (t stdTimer) C() <-chan time.Time {
	return t.Timer.C
}
