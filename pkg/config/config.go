// Package config loads pool settings from YAML with environment overrides
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jzx17/gothreadpool/pkg/pool"
	"github.com/jzx17/gothreadpool/pkg/strategy"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "GOTHREADPOOL"

// Config is the file representation of a pool deployment
type Config struct {
	Pool     PoolConfig    `yaml:"pool"`
	Strategy string        `yaml:"strategy"`
	Log      LogConfig     `yaml:"log"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// PoolConfig mirrors pool.Config for the serializable fields
type PoolConfig struct {
	Workers         int           `yaml:"workers"`
	QueueCapacity   int           `yaml:"queue_capacity"`
	BatchSize       int           `yaml:"batch_size"`
	SpinIterations  int           `yaml:"spin_iterations"`
	YieldIterations int           `yaml:"yield_iterations"`
	PinThreads      bool          `yaml:"pin_threads"`
	StopTimeout     time.Duration `yaml:"stop_timeout"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			QueueCapacity:   worker.DefaultQueueCapacity,
			BatchSize:       worker.DefaultBatchSize,
			SpinIterations:  worker.DefaultSpinIterations,
			YieldIterations: worker.DefaultYieldIterations,
			PinThreads:      true,
			StopTimeout:     worker.DefaultStopTimeout,
		},
		Strategy: strategy.NameLoadBased,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr:      ":9090",
			Namespace: "gothreadpool",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- the path comes from the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write serializes c as YAML
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// Validate checks every field
func (c *Config) Validate() error {
	p := c.Pool
	if p.Workers < 0 {
		return types.NewConfigError("config", "pool.workers", p.Workers, "must not be negative")
	}
	if err := p.workerConfig().Validate(); err != nil {
		return err
	}

	s, err := strategy.ByName(c.Strategy)
	if err != nil {
		return err
	}
	if p.Workers > 0 {
		if err := strategy.Validate(s, p.Workers); err != nil {
			return err
		}
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return types.NewConfigError("config", "log.format", c.Log.Format, `must be "text" or "json"`)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return types.NewConfigError("config", "metrics.addr", c.Metrics.Addr, "required when metrics are enabled")
	}
	return nil
}

// PoolConfig converts the file settings into a pool configuration. Logger,
// clock and observer are left for the caller.
func (c *Config) PoolConfig() *pool.Config {
	cfg := pool.DefaultConfig()
	cfg.Workers = c.Pool.Workers
	cfg.QueueCapacity = c.Pool.QueueCapacity
	cfg.BatchSize = c.Pool.BatchSize
	cfg.SpinIterations = c.Pool.SpinIterations
	cfg.YieldIterations = c.Pool.YieldIterations
	cfg.DisablePinning = !c.Pool.PinThreads
	cfg.StopTimeout = c.Pool.StopTimeout
	return cfg
}

// NewStrategy builds the configured strategy
func (c *Config) NewStrategy() (strategy.Strategy, error) {
	return strategy.ByName(c.Strategy)
}

// NewLogger builds a slog logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (p PoolConfig) workerConfig() worker.Config {
	return worker.Config{
		QueueCapacity:   p.QueueCapacity,
		BatchSize:       p.BatchSize,
		SpinIterations:  p.SpinIterations,
		YieldIterations: p.YieldIterations,
		StopTimeout:     p.StopTimeout,
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, types.NewConfigError("config", "log.level", s, "must be debug, info, warn or error")
	}
	return level, nil
}
