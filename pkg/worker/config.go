package worker

import (
	"log/slog"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// Defaults for worker configuration
const (
	DefaultQueueCapacity   = 4096
	DefaultBatchSize       = 32
	DefaultSpinIterations  = 64
	DefaultYieldIterations = 16
	DefaultStopTimeout     = 5 * time.Second
)

// Config defines configuration for a single worker
type Config struct {
	// QueueCapacity is the bounded queue size
	QueueCapacity int

	// BatchSize is the maximum number of tasks taken in one bulk dequeue
	BatchSize int

	// SpinIterations bounds the busy-wait phase
	SpinIterations int

	// YieldIterations bounds the OS-yield phase
	YieldIterations int

	// StopTimeout bounds how long Stop waits for the loop to exit
	StopTimeout time.Duration

	// Pinner pins the loop thread to a CPU (optional, defaults to the platform pinner)
	Pinner Pinner

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger receives incidental diagnostics (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		QueueCapacity:   DefaultQueueCapacity,
		BatchSize:       DefaultBatchSize,
		SpinIterations:  DefaultSpinIterations,
		YieldIterations: DefaultYieldIterations,
		StopTimeout:     DefaultStopTimeout,
		Pinner:          DefaultPinner(),
		Clock:           types.NewRealClock(),
		Logger:          slog.Default(),
	}
}

// Validate checks parameters without modifying the config
func (c Config) Validate() error {
	return c.validate()
}

// validate checks parameters and fills optional fields
func (c *Config) validate() error {
	if c.QueueCapacity <= 0 {
		return types.NewConfigError("worker", "queue capacity", c.QueueCapacity, "must be positive")
	}
	if c.BatchSize <= 0 {
		return types.NewConfigError("worker", "batch size", c.BatchSize, "must be positive")
	}
	if c.SpinIterations < 0 {
		return types.NewConfigError("worker", "spin iterations", c.SpinIterations, "must not be negative")
	}
	if c.YieldIterations < 0 {
		return types.NewConfigError("worker", "yield iterations", c.YieldIterations, "must not be negative")
	}

	if c.StopTimeout <= 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.Pinner == nil {
		c.Pinner = DefaultPinner()
	}
	if c.Clock == nil {
		c.Clock = types.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}
