// Package testutils provides testing helpers shared across packages
package testutils

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// DefaultTimeout bounds how long a test waits for asynchronous work
const DefaultTimeout = 5 * time.Second

// Context returns a context cancelled at test cleanup or after DefaultTimeout
func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	t.Cleanup(cancel)
	return ctx
}

// Eventually waits for condition to become true with the default timeout
func Eventually(t testing.TB, condition func() bool, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Eventually(t, condition, DefaultTimeout, time.Millisecond, msgAndArgs...)
}

// Never asserts condition stays false for d
func Never(t testing.TB, condition func() bool, d time.Duration, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Never(t, condition, d, time.Millisecond, msgAndArgs...)
}

// Gate is a latch tasks can block on until the test opens it
type Gate struct {
	once sync.Once
	ch   chan struct{}
}

// NewGate creates a closed gate
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Wait blocks until the gate is opened
func (g *Gate) Wait() {
	<-g.ch
}

// Open releases all waiters; repeated calls are no-ops
func (g *Gate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// Recorder collects values from concurrent callers
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// Add records v
func (r *Recorder[T]) Add(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// Values returns a copy of the recorded values
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of recorded values
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// BufferLogger returns a debug-level text logger writing into a buffer
func BufferLogger() (*slog.Logger, *SyncBuffer) {
	buf := &SyncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// SyncBuffer is a bytes.Buffer safe for concurrent writers
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
