package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// ErrAttemptsExhausted is returned when every allowed attempt was rejected
var ErrAttemptsExhausted = errors.New("admission attempts exhausted")

// Submit offers task to submitter until it is admitted, the policy runs out
// of attempts, or ctx is done. Only full-queue rejections are retried; any
// other rejection reason is returned immediately.
//
// The returned admission is the last one observed. On failure the caller
// still owns the task and can take it back from the admission.
func Submit(ctx context.Context, submitter types.Submitter, category types.Category, task types.Task, policy Policy, clock types.Clock) (types.Admission, error) {
	if clock == nil {
		clock = types.NewRealClock()
	}

	var admission types.Admission
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return rejectedOnCancel(admission, task, err), err
		}

		admission = submitter.AddTask(category, task)
		if admission.OK() {
			return admission, nil
		}
		if !errors.Is(admission.Err(), types.ErrQueueFull) {
			return admission, admission.Err()
		}
		if limit := policy.MaxAttempts(); limit > 0 && attempt >= limit {
			return admission, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, admission.Err())
		}

		delay := policy.NextDelay(attempt)
		if delay <= 0 {
			continue
		}

		timer := clock.NewTimer(delay)
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return admission, ctx.Err()
		}
	}
}

// rejectedOnCancel keeps the task reachable when ctx ends before any attempt
func rejectedOnCancel(last types.Admission, task types.Task, err error) types.Admission {
	if last.Task() != nil {
		return last
	}
	return types.RejectedWith(task, err)
}
