package retry

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gothreadpool/internal/testutils"
	"github.com/jzx17/gothreadpool/pkg/task"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// fakeSubmitter rejects the first `rejections` calls with reason
type fakeSubmitter struct {
	mu         sync.Mutex
	rejections int
	reason     error
	calls      int
	categories []types.Category
}

func (f *fakeSubmitter) AddTask(category types.Category, t types.Task) types.Admission {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.categories = append(f.categories, category)
	if f.calls <= f.rejections {
		return types.RejectedWith(t, f.reason)
	}
	return types.Admitted()
}

func (f *fakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestFixedDelay(t *testing.T) {
	p := NewFixedDelay(3, 100*time.Millisecond)
	assert.Equal(t, 3, p.MaxAttempts())
	for attempt := 1; attempt <= 3; attempt++ {
		assert.Equal(t, 100*time.Millisecond, p.NextDelay(attempt))
	}

	assert.Equal(t, 0, NewFixedDelay(-2, time.Millisecond).MaxAttempts())
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		name    string
		policy  *ExponentialBackoff
		attempt int
		want    time.Duration
	}{
		{"first", NewExponentialBackoff(5, 100*time.Millisecond), 1, 100 * time.Millisecond},
		{"second", NewExponentialBackoff(5, 100*time.Millisecond), 2, 200 * time.Millisecond},
		{"fourth", NewExponentialBackoff(5, 100*time.Millisecond), 4, 800 * time.Millisecond},
		{"zero attempt", NewExponentialBackoff(5, 100*time.Millisecond), 0, 100 * time.Millisecond},
		{"capped", NewExponentialBackoff(5, 100*time.Millisecond).WithMaxDelay(300 * time.Millisecond), 3, 300 * time.Millisecond},
		{"multiplier", NewExponentialBackoff(5, 10*time.Millisecond).WithMultiplier(3), 3, 90 * time.Millisecond},
		{"ignored multiplier", NewExponentialBackoff(5, 10*time.Millisecond).WithMultiplier(0.5), 2, 20 * time.Millisecond},
		{"huge attempt", NewExponentialBackoff(0, time.Second), 500, DefaultMaxDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.NextDelay(tt.attempt))
		})
	}
}

func TestJitter(t *testing.T) {
	p := NewFixedDelay(0, 100*time.Millisecond, WithJitter(0.2), WithRand(rand.New(rand.NewSource(1))))
	for i := 0; i < 100; i++ {
		d := p.NextDelay(i)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}

	// out of range factors are ignored
	assert.Equal(t, time.Second, NewFixedDelay(1, time.Second, WithJitter(2)).NextDelay(1))
}

func TestSubmit_AdmittedFirstTry(t *testing.T) {
	s := &fakeSubmitter{}
	tk := task.New(func() error { return nil })

	admission, err := Submit(context.Background(), s, types.CategoryLight, tk, NewFixedDelay(3, time.Hour), nil)
	require.NoError(t, err)
	assert.True(t, admission.OK())
	assert.Equal(t, 1, s.Calls())
	assert.Equal(t, []types.Category{types.CategoryLight}, s.categories)
}

func TestSubmit_RetriesAfterDelay(t *testing.T) {
	ctx := testutils.Context(t)
	clock := testutils.NewClockWrapper(testutils.NewMockClock(t))
	s := &fakeSubmitter{rejections: 2, reason: types.ErrQueueFull}
	tk := task.New(func() error { return nil })

	type result struct {
		admission types.Admission
		err       error
	}
	done := make(chan result, 1)
	go func() {
		a, err := Submit(ctx, s, types.CategoryHeavy, tk, NewExponentialBackoff(5, 10*time.Millisecond), clock)
		done <- result{a, err}
	}()

	assert.Equal(t, 10*time.Millisecond, clock.AwaitTimer(t, ctx))
	clock.Advance(10 * time.Millisecond).MustWait(ctx)
	assert.Equal(t, 20*time.Millisecond, clock.AwaitTimer(t, ctx))
	clock.Advance(20 * time.Millisecond).MustWait(ctx)

	r := <-done
	require.NoError(t, r.err)
	assert.True(t, r.admission.OK())
	assert.Equal(t, 3, s.Calls())
}

func TestSubmit_AttemptsExhausted(t *testing.T) {
	s := &fakeSubmitter{rejections: 100, reason: types.ErrQueueFull}
	tk := task.New(func() error { return nil })

	admission, err := Submit(context.Background(), s, types.CategoryIO, tk, NewFixedDelay(4, 0), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.ErrorIs(t, err, types.ErrQueueFull)
	assert.Same(t, tk, admission.Task())
	assert.Equal(t, 4, s.Calls())
}

func TestSubmit_TerminalRejection(t *testing.T) {
	for _, reason := range []error{types.ErrNoStrategy, types.ErrNoWorkers, types.ErrWorkerStopped} {
		s := &fakeSubmitter{rejections: 100, reason: reason}
		tk := task.New(func() error { return nil })

		admission, err := Submit(context.Background(), s, types.CategoryIO, tk, NewFixedDelay(0, 0), nil)
		assert.ErrorIs(t, err, reason)
		assert.Same(t, tk, admission.Task())
		assert.Equal(t, 1, s.Calls())
	}
}

func TestSubmit_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSubmitter{}
	tk := task.New(func() error { return nil })
	admission, err := Submit(ctx, s, types.CategoryIO, tk, NewFixedDelay(0, time.Second), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, tk, admission.Task())
	assert.Zero(t, s.Calls())
}

func TestSubmit_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(testutils.Context(t))
	clock := testutils.NewClockWrapper(testutils.NewMockClock(t))
	s := &fakeSubmitter{rejections: 100, reason: types.ErrQueueFull}
	tk := task.New(func() error { return nil })

	done := make(chan error, 1)
	go func() {
		_, err := Submit(ctx, s, types.CategoryIO, tk, NewFixedDelay(0, time.Minute), clock)
		done <- err
	}()

	clock.AwaitTimer(t, ctx)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, s.Calls())
}
