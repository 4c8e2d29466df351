package task

import (
	"fmt"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// FutureTask is a task that additionally reports its outcome to a completion
// callback, after the error callback has run on failure.
type FutureTask struct {
	core
	onComplete types.CompletionCallback
}

// NewFuture creates a future task
func NewFuture(body func() error, onComplete types.CompletionCallback, opts ...Option) *FutureTask {
	t := &FutureTask{onComplete: onComplete}
	t.init(body, opts)
	return t
}

// ID returns the task ID
func (t *FutureTask) ID() string {
	return t.id
}

// SetErrorCallback replaces the failure handler
func (t *FutureTask) SetErrorCallback(cb types.ErrorCallback) {
	t.onError = cb
}

// SetCompletionCallback replaces the completion callback
func (t *FutureTask) SetCompletionCallback(cb types.CompletionCallback) {
	t.onComplete = cb
}

// Invoke executes the task and then the completion callback, exactly once
func (t *FutureTask) Invoke() types.Outcome {
	outcome, first := t.invoke()
	if first {
		t.complete(outcome)
	}
	return outcome
}

// Invoked reports whether the task has been invoked
func (t *FutureTask) Invoked() bool {
	return t.invoked.Load()
}

func (t *FutureTask) complete(outcome types.Outcome) {
	cb := t.onComplete
	if cb == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("task completion callback panicked",
				"task_id", t.id,
				"success", outcome.Success,
				"panic", fmt.Sprintf("%v", r))
		}
	}()
	cb(outcome)
}
