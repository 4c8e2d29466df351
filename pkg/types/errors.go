// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrQueueFull indicates the target worker queue is at capacity
	ErrQueueFull = errors.New("worker queue is full")

	// ErrNoStrategy indicates no dispatch strategy is installed
	ErrNoStrategy = errors.New("no dispatch strategy installed")

	// ErrNoWorkers indicates the pool has no workers (not initialized or shut down)
	ErrNoWorkers = errors.New("pool has no workers")

	// ErrWorkerStopped indicates the target worker has been stopped
	ErrWorkerStopped = errors.New("worker is stopped")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrUnknownFailure is the normalized form of a panic carrying a non-error value
	ErrUnknownFailure = errors.New("unknown task failure")

	// ErrAlreadyInvoked indicates a task was invoked more than once
	ErrAlreadyInvoked = errors.New("task already invoked")

	// ErrStopTimeout indicates a worker loop did not exit in time
	ErrStopTimeout = errors.New("worker stop timeout")
)

// ConfigError reports invalid setup parameters. There is no recovery path:
// the caller must retry setup with valid parameters.
type ConfigError struct {
	// Component is where the invalid parameter was supplied
	Component string

	// Field is the offending parameter
	Field string

	// Value is the rejected value
	Value interface{}

	// Reason describes the constraint
	Reason string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: invalid %s %v: %s", e.Component, e.Field, e.Value, e.Reason)
}

// NewConfigError creates a new configuration error
func NewConfigError(component, field string, value interface{}, reason string) *ConfigError {
	return &ConfigError{
		Component: component,
		Field:     field,
		Value:     value,
		Reason:    reason,
	}
}

// IsConfigError reports whether err is or wraps a ConfigError
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// TaskError represents a failure raised by a task body
type TaskError struct {
	// TaskID is the ID of the failed task
	TaskID string

	// Cause is the underlying error
	Cause error

	// Panicked is true when the failure was recovered from a panic
	Panicked bool

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TaskError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Cause)
	}
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewTaskError creates a new task error
func NewTaskError(taskID string, cause error) *TaskError {
	return &TaskError{
		TaskID:  taskID,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}
