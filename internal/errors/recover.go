// Package errors normalizes failures raised by task bodies
package errors

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// stackSize bounds the captured stack trace
const stackSize = 4096

// Kind classifies a task failure
type Kind int

const (
	// KindNone means no failure
	KindNone Kind = iota
	// KindError is an error returned by the task body
	KindError
	// KindPanic is a panic carrying an error value
	KindPanic
	// KindUnknown is a panic carrying anything else
	KindUnknown
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindError:
		return "error"
	case KindPanic:
		return "panic"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// FromError wraps an error returned by a task body
func FromError(taskID string, err error) *types.TaskError {
	var taskErr *types.TaskError
	if errors.As(err, &taskErr) && taskErr.TaskID == taskID {
		return taskErr
	}
	return types.NewTaskError(taskID, err)
}

// FromRecovered converts a recovered panic value into a task error. Error
// values keep their identity; anything else is normalized to
// types.ErrUnknownFailure so callers see one failure shape.
func FromRecovered(taskID string, recovered interface{}) *types.TaskError {
	var buf [stackSize]byte
	n := runtime.Stack(buf[:], false)

	var cause error
	switch v := recovered.(type) {
	case error:
		cause = v
	case string:
		cause = fmt.Errorf("%w: %s", types.ErrUnknownFailure, v)
	default:
		cause = fmt.Errorf("%w: %v", types.ErrUnknownFailure, v)
	}

	taskErr := types.NewTaskError(taskID, cause)
	taskErr.Panicked = true
	taskErr.WithContext("stack_trace", string(buf[:n]))
	taskErr.WithContext("panic_value", fmt.Sprintf("%v", recovered))
	return taskErr
}

// Classify reports the kind of a task failure
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, types.ErrUnknownFailure) {
		return KindUnknown
	}
	var taskErr *types.TaskError
	if errors.As(err, &taskErr) && taskErr.Panicked {
		return KindPanic
	}
	return KindError
}
