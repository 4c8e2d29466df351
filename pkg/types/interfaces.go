// Package types defines the core types shared by tasks, workers, strategies and the pool
package types

import (
	"fmt"
	"strings"
)

// Category classifies a submission for routing. It is never stored in the task.
type Category int

const (
	// CategoryIO is blocking or latency-bound work (file, network, device)
	CategoryIO Category = iota
	// CategoryLight is short CPU work
	CategoryLight
	// CategoryHeavy is long-running CPU work
	CategoryHeavy
)

// Categories lists every category in partition order
var Categories = []Category{CategoryIO, CategoryLight, CategoryHeavy}

// String returns the string representation of Category
func (c Category) String() string {
	switch c {
	case CategoryIO:
		return "io"
	case CategoryLight:
		return "light"
	case CategoryHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the defined categories
func (c Category) Valid() bool {
	return c >= CategoryIO && c <= CategoryHeavy
}

// ParseCategory parses a category name (case-insensitive)
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "io":
		return CategoryIO, nil
	case "light":
		return CategoryLight, nil
	case "heavy":
		return CategoryHeavy, nil
	default:
		return 0, fmt.Errorf("unknown task category %q", s)
	}
}

// WorkerStatus is the lifecycle status of a worker
type WorkerStatus int32

const (
	// StatusRunning means the worker consumes its queue
	StatusRunning WorkerStatus = iota
	// StatusPaused means the worker retains its queue but does not consume it
	StatusPaused
	// StatusStopped is terminal
	StatusStopped
)

// String returns the string representation of WorkerStatus
func (s WorkerStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single task invocation
type Outcome struct {
	// Success is true when the body returned without error
	Success bool

	// Err is the failure delivered to the error callback, nil on success
	Err error
}

// Succeeded returns a successful outcome
func Succeeded() Outcome {
	return Outcome{Success: true}
}

// Failed returns a failed outcome carrying err
func Failed(err error) Outcome {
	return Outcome{Success: false, Err: err}
}

// ErrorCallback receives a task failure
type ErrorCallback func(err error)

// CompletionCallback receives the outcome of a future task
type CompletionCallback func(outcome Outcome)

// Task defines the unit of work executed by a worker.
//
// Invoke must never panic: failures are isolated inside the task and reported
// through its callbacks. Workers rely on this and do not guard invocation.
type Task interface {
	// ID returns the task ID (diagnostics only)
	ID() string

	// SetErrorCallback replaces the failure handler. Not safe to call
	// concurrently with Invoke.
	SetErrorCallback(cb ErrorCallback)

	// Invoke executes the task body exactly once
	Invoke() Outcome
}

// Submitter is anything that accepts categorized tasks
type Submitter interface {
	AddTask(category Category, task Task) Admission
}
