// Package task provides the task units executed by workers
package task

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	failure "github.com/jzx17/gothreadpool/internal/errors"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// Option configures a task
type Option func(*core)

// WithID sets a custom task ID
func WithID(id string) Option {
	return func(c *core) {
		if id != "" {
			c.id = id
		}
	}
}

// WithErrorCallback sets the failure handler
func WithErrorCallback(cb types.ErrorCallback) Option {
	return func(c *core) {
		c.onError = cb
	}
}

// WithLogger sets the fallback diagnostic logger used when no error callback is set
func WithLogger(logger *slog.Logger) Option {
	return func(c *core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// core holds the state shared by both task variants
type core struct {
	id      string
	body    func() error
	onError types.ErrorCallback
	logger  *slog.Logger
	invoked atomic.Bool
}

func (c *core) init(body func() error, opts []Option) {
	c.id = uuid.NewString()
	c.body = body
	c.logger = slog.Default()
	for _, opt := range opts {
		opt(c)
	}
}

// invoke runs the body at most once. The second result is false when the
// task had already been invoked.
func (c *core) invoke() (types.Outcome, bool) {
	if !c.invoked.CompareAndSwap(false, true) {
		return types.Failed(types.ErrAlreadyInvoked), false
	}

	if err := c.run(); err != nil {
		c.report(err)
		return types.Failed(err), true
	}
	return types.Succeeded(), true
}

// run executes the body and converts panics into task errors
func (c *core) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.FromRecovered(c.id, r)
		}
	}()

	if c.body == nil {
		return failure.FromError(c.id, fmt.Errorf("task %s has no body", c.id))
	}
	if bodyErr := c.body(); bodyErr != nil {
		return failure.FromError(c.id, bodyErr)
	}
	return nil
}

// report delivers err to the error callback, or to the fallback logger when
// no callback is set. A panicking callback is contained here too.
func (c *core) report(err error) {
	cb := c.onError
	if cb == nil {
		c.fallback(err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("task error callback panicked",
				"task_id", c.id,
				"error", err,
				"panic", fmt.Sprintf("%v", r))
		}
	}()
	cb(err)
}

func (c *core) fallback(err error) {
	c.logger.Error("task failed",
		"task_id", c.id,
		"kind", failure.Classify(err).String(),
		"error", err)
}

// FuncTask wraps a body with an optional error callback
type FuncTask struct {
	core
}

// New creates a task running body
func New(body func() error, opts ...Option) *FuncTask {
	t := &FuncTask{}
	t.init(body, opts)
	return t
}

// ID returns the task ID
func (t *FuncTask) ID() string {
	return t.id
}

// SetErrorCallback replaces the failure handler
func (t *FuncTask) SetErrorCallback(cb types.ErrorCallback) {
	t.onError = cb
}

// Invoke executes the task. Failures never escape.
func (t *FuncTask) Invoke() types.Outcome {
	outcome, _ := t.invoke()
	return outcome
}

// Invoked reports whether the task has been invoked
func (t *FuncTask) Invoked() bool {
	return t.invoked.Load()
}
