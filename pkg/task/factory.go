package task

import (
	"log/slog"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// Factory builds tasks sharing a default error callback and logger
type Factory struct {
	onError types.ErrorCallback
	logger  *slog.Logger
}

// NewFactory creates a task factory. Either argument may be nil.
func NewFactory(onError types.ErrorCallback, logger *slog.Logger) *Factory {
	return &Factory{onError: onError, logger: logger}
}

// Task builds a FuncTask. Per-call options override the factory defaults.
func (f *Factory) Task(body func() error, opts ...Option) *FuncTask {
	return New(body, f.options(opts)...)
}

// Future builds a FutureTask
func (f *Factory) Future(body func() error, onComplete types.CompletionCallback, opts ...Option) *FutureTask {
	return NewFuture(body, onComplete, f.options(opts)...)
}

// Action builds a FuncTask from a body that cannot return an error
func (f *Factory) Action(fn func(), opts ...Option) *FuncTask {
	return f.Task(Func(fn), opts...)
}

func (f *Factory) options(opts []Option) []Option {
	all := make([]Option, 0, len(opts)+2)
	if f.onError != nil {
		all = append(all, WithErrorCallback(f.onError))
	}
	if f.logger != nil {
		all = append(all, WithLogger(f.logger))
	}
	return append(all, opts...)
}

// Func adapts a function without an error result into a task body
func Func(fn func()) func() error {
	if fn == nil {
		return nil
	}
	return func() error {
		fn()
		return nil
	}
}
