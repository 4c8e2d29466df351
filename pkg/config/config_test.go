package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gothreadpool/pkg/strategy"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func env(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, worker.DefaultQueueCapacity, cfg.Pool.QueueCapacity)
	assert.Equal(t, strategy.NameLoadBased, cfg.Strategy)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Pool.PinThreads)
	assert.False(t, cfg.PoolConfig().DisablePinning)
}

func TestPoolConfig_PinningOptOut(t *testing.T) {
	path := writeFile(t, "pool:\n  pin_threads: false\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Pool.PinThreads)
	assert.True(t, cfg.PoolConfig().DisablePinning)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Pool, cfg.Pool)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
pool:
  workers: 8
  queue_capacity: 256
  pin_threads: true
  stop_timeout: 2s
strategy: category
log:
  level: debug
  format: json
metrics:
  enabled: true
  addr: ":9100"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Pool.Workers)
	assert.Equal(t, 256, cfg.Pool.QueueCapacity)
	assert.Equal(t, worker.DefaultBatchSize, cfg.Pool.BatchSize, "unset fields keep defaults")
	assert.True(t, cfg.Pool.PinThreads)
	assert.Equal(t, 2*time.Second, cfg.Pool.StopTimeout)
	assert.Equal(t, "category", cfg.Strategy)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)

	pc := cfg.PoolConfig()
	assert.Equal(t, 8, pc.Workers)
	assert.Equal(t, 256, pc.QueueCapacity)
	assert.False(t, pc.DisablePinning)
	assert.Equal(t, 2*time.Second, pc.StopTimeout)

	s, err := cfg.NewStrategy()
	require.NoError(t, err)
	assert.Equal(t, strategy.NameCategoryRoundRobin, strategy.NameOf(s))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "pool: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "strategy: category\npool:\n  workers: 2\n"))
	require.Error(t, err)
	assert.True(t, types.IsConfigError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Pool.Workers = -1 }},
		{"zero capacity", func(c *Config) { c.Pool.QueueCapacity = 0 }},
		{"zero batch", func(c *Config) { c.Pool.BatchSize = 0 }},
		{"negative spin", func(c *Config) { c.Pool.SpinIterations = -1 }},
		{"unknown strategy", func(c *Config) { c.Strategy = "random" }},
		{"category with too few workers", func(c *Config) { c.Strategy = "category"; c.Pool.Workers = 3 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, types.IsConfigError(err), "got %v", err)
		})
	}

	cfg := Default()
	cfg.Strategy = "category"
	assert.NoError(t, cfg.Validate(), "category with default worker count is checked at init")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"GOTHREADPOOL_WORKERS":         "6",
		"GOTHREADPOOL_QUEUE_CAPACITY":  "512",
		"GOTHREADPOOL_PIN_THREADS":     "false",
		"GOTHREADPOOL_STOP_TIMEOUT":    "750ms",
		"GOTHREADPOOL_STRATEGY":        "round-robin",
		"GOTHREADPOOL_LOG_LEVEL":       "warn",
		"GOTHREADPOOL_METRICS_ENABLED": "1",
		"GOTHREADPOOL_BATCH_SIZE":      "",
	}))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Pool.Workers)
	assert.Equal(t, 512, cfg.Pool.QueueCapacity)
	assert.Equal(t, worker.DefaultBatchSize, cfg.Pool.BatchSize)
	assert.False(t, cfg.Pool.PinThreads)
	assert.Equal(t, 750*time.Millisecond, cfg.Pool.StopTimeout)
	assert.Equal(t, "round-robin", cfg.Strategy)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"GOTHREADPOOL_WORKERS":      "many",
		"GOTHREADPOOL_PIN_THREADS":  "sometimes",
		"GOTHREADPOOL_STOP_TIMEOUT": "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			err := Default().ApplyEnv(env(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "pool:\n  workers: 8\n")
	t.Setenv("GOTHREADPOOL_WORKERS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Pool.Workers)
}

func TestEnvKeys(t *testing.T) {
	keys := EnvKeys()
	assert.Contains(t, keys, "GOTHREADPOOL_WORKERS")
	assert.Contains(t, keys, "GOTHREADPOOL_METRICS_ADDR")
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, EnvPrefix+"_"))
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Pool.Workers = 4
	cfg.Strategy = "category"

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.Contains(t, buf.String(), "queue_capacity: 4096")

	loaded, err := Load(writeFile(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	logger := cfg.NewLogger(&buf)
	logger.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg.Log.Format = "text"
	cfg.Log.Level = "error"
	cfg.NewLogger(&buf).Info("dropped")
	assert.Empty(t, buf.String())
}
