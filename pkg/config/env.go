package config

import (
	"fmt"
	"strconv"
	"time"
)

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key string
	set func(c *Config, value string) error
}

var envBindings = []envBinding{
	{"WORKERS", intField(func(c *Config) *int { return &c.Pool.Workers })},
	{"QUEUE_CAPACITY", intField(func(c *Config) *int { return &c.Pool.QueueCapacity })},
	{"BATCH_SIZE", intField(func(c *Config) *int { return &c.Pool.BatchSize })},
	{"SPIN_ITERATIONS", intField(func(c *Config) *int { return &c.Pool.SpinIterations })},
	{"YIELD_ITERATIONS", intField(func(c *Config) *int { return &c.Pool.YieldIterations })},
	{"PIN_THREADS", boolField(func(c *Config) *bool { return &c.Pool.PinThreads })},
	{"STOP_TIMEOUT", durationField(func(c *Config) *time.Duration { return &c.Pool.StopTimeout })},
	{"STRATEGY", stringField(func(c *Config) *string { return &c.Strategy })},
	{"LOG_LEVEL", stringField(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FORMAT", stringField(func(c *Config) *string { return &c.Log.Format })},
	{"METRICS_ENABLED", boolField(func(c *Config) *bool { return &c.Metrics.Enabled })},
	{"METRICS_ADDR", stringField(func(c *Config) *string { return &c.Metrics.Addr })},
	{"METRICS_NAMESPACE", stringField(func(c *Config) *string { return &c.Metrics.Namespace })},
}

// EnvKeys lists the recognized override variables
func EnvKeys() []string {
	keys := make([]string, len(envBindings))
	for i, b := range envBindings {
		keys[i] = EnvPrefix + "_" + b.key
	}
	return keys
}

// ApplyEnv overrides fields from GOTHREADPOOL_* variables. Empty values are
// ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings {
		key := EnvPrefix + "_" + b.key
		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		if err := b.set(c, value); err != nil {
			return fmt.Errorf("failed to apply %s: %w", key, err)
		}
	}
	return nil
}

func intField(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		*field(c) = n
		return nil
	}
}

func boolField(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		*field(c) = b
		return nil
	}
}

func durationField(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value: %s", value)
		}
		*field(c) = d
		return nil
	}
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}
