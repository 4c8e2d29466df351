//go:build linux

package worker

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/jzx17/gothreadpool/internal/testutils"
)

func TestWorker_PinnedThreadNotReusedAfterStop(t *testing.T) {
	pinnedTID := make(chan int, 1)
	w := newTestWorker(t, func(c *Config) {
		c.Pinner = PinnerFunc(func(int) error {
			pinnedTID <- unix.Gettid()
			return nil
		})
	})
	w.SetAffinityIndex(0)
	w.Start()

	var executed atomic.Int64
	require.True(t, w.AddTask(counting(&executed)).OK())
	testutils.Eventually(t, func() bool { return executed.Load() == 1 })

	var tid int
	select {
	case tid = <-pinnedTID:
	case <-testutils.Context(t).Done():
		t.Fatal("loop thread was not pinned")
	}

	require.NoError(t, w.Stop())
	<-w.Done()

	// hold many threads at once so the scheduler has to hand out every idle one
	n := 4 * runtime.GOMAXPROCS(0)
	if n < 16 {
		n = 16
	}
	var seen testutils.Recorder[int]
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			seen.Add(unix.Gettid())
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.NotContains(t, seen.Values(), tid, "pinned thread %d ran another goroutine", tid)
}
