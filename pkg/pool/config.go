package pool

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// Config defines configuration for a pool
type Config struct {
	// Workers is the worker count used by Init (0 means DefaultWorkerCount)
	Workers int

	// QueueCapacity is the bounded queue size of each worker
	QueueCapacity int

	// BatchSize is the maximum number of tasks a worker takes per bulk dequeue
	BatchSize int

	// SpinIterations bounds each worker's busy-wait phase
	SpinIterations int

	// YieldIterations bounds each worker's OS-yield phase
	YieldIterations int

	// DisablePinning keeps worker threads unpinned. Affinity indices are still
	// assigned, but the pinner is replaced with worker.NoopPinner.
	DisablePinning bool

	// StopTimeout bounds how long Shutdown waits for each worker
	StopTimeout time.Duration

	// Pinner pins worker threads (optional, defaults to the platform pinner)
	Pinner worker.Pinner

	// Logger receives lifecycle events (optional, defaults to slog.Default())
	Logger *slog.Logger

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Observer is notified of every admission outcome (optional)
	Observer Observer
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		QueueCapacity:   worker.DefaultQueueCapacity,
		BatchSize:       worker.DefaultBatchSize,
		SpinIterations:  worker.DefaultSpinIterations,
		YieldIterations: worker.DefaultYieldIterations,
		StopTimeout:     worker.DefaultStopTimeout,
		Clock:           types.NewRealClock(),
		Logger:          slog.Default(),
	}
}

// DefaultWorkerCount is one less than the usable hardware threads, leaving a
// thread for the submitting side, and never less than one.
func DefaultWorkerCount() int {
	n := runtime.GOMAXPROCS(0) - 1
	if n < 1 {
		return 1
	}
	return n
}

// validate checks parameters and fills optional fields
func (c *Config) validate() error {
	if c.Workers < 0 {
		return types.NewConfigError("pool", "worker count", c.Workers, "must not be negative")
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = worker.DefaultQueueCapacity
	}
	if c.BatchSize == 0 {
		c.BatchSize = worker.DefaultBatchSize
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = worker.DefaultStopTimeout
	}
	if c.Clock == nil {
		c.Clock = types.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.DisablePinning {
		c.Pinner = worker.NoopPinner{}
	}
	return c.workerConfig().Validate()
}

func (c *Config) workerConfig() *worker.Config {
	return &worker.Config{
		QueueCapacity:   c.QueueCapacity,
		BatchSize:       c.BatchSize,
		SpinIterations:  c.SpinIterations,
		YieldIterations: c.YieldIterations,
		StopTimeout:     c.StopTimeout,
		Pinner:          c.Pinner,
		Clock:           c.Clock,
		Logger:          c.Logger,
	}
}
