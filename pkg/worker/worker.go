package worker

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// relaxLoads is the number of status reads per spin step
const relaxLoads = 16

// Worker owns one bounded queue and one OS thread running the consume loop.
//
// The hot atomics are separated by cache-line padding so producers bumping
// occupancy do not invalidate the line the loop reads its status from.
type Worker struct {
	id     int
	config Config
	queue  *taskQueue
	logger *slog.Logger

	_         cpu.CacheLinePad
	occupancy atomic.Int64
	_         cpu.CacheLinePad
	status    atomic.Int32
	_         cpu.CacheLinePad
	executed  atomic.Uint64
	failed    atomic.Uint64
	_         cpu.CacheLinePad

	affinity atomic.Int64

	// mu guards the condition variable only; status and occupancy are atomics
	mu   sync.Mutex
	cond *sync.Cond

	started  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a worker. It does not start the loop thread.
func New(id int, config *Config) (*Worker, error) {
	if config == nil {
		config = DefaultConfig()
	}

	cfg := *config
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	w := &Worker{
		id:     id,
		config: cfg,
		queue:  newTaskQueue(cfg.QueueCapacity),
		logger: cfg.Logger.With("component", "worker", "worker_id", id),
		done:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	w.affinity.Store(NoAffinity)
	w.status.Store(int32(types.StatusRunning))

	return w, nil
}

// ID returns the worker ID
func (w *Worker) ID() int {
	return w.id
}

// SetAffinityIndex sets the CPU the loop thread is pinned to. It takes effect
// when the thread starts; use NoAffinity to disable pinning.
func (w *Worker) SetAffinityIndex(index int) {
	if index < 0 {
		index = NoAffinity
	}
	w.affinity.Store(int64(index))
}

// AffinityIndex returns the configured CPU or NoAffinity
func (w *Worker) AffinityIndex() int {
	return int(w.affinity.Load())
}

// Start spawns the loop thread. Only the first call has an effect, and a
// stopped worker never starts.
func (w *Worker) Start() {
	if w.Status() == types.StatusStopped {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
}

// AddTask attempts bounded admission. It never blocks: the task is either
// queued or handed back inside the returned Admission.
func (w *Worker) AddTask(task types.Task) types.Admission {
	if task == nil {
		return types.Rejected(nil)
	}
	if w.Status() == types.StatusStopped {
		return types.RejectedWith(task, types.ErrWorkerStopped)
	}

	n := w.occupancy.Add(1)
	if n > int64(w.config.QueueCapacity) {
		w.occupancy.Add(-1)
		return types.Rejected(task)
	}

	// occupancy never drops below the physical depth, so the slot exists
	if !w.queue.tryPush(task) {
		w.occupancy.Add(-1)
		return types.Rejected(task)
	}

	if n == 1 {
		w.wake()
	}
	return types.Admitted()
}

// Pause stops consumption and retains queued tasks
func (w *Worker) Pause() {
	w.status.CompareAndSwap(int32(types.StatusRunning), int32(types.StatusPaused))
}

// Resume continues consumption after Pause
func (w *Worker) Resume() {
	if w.status.CompareAndSwap(int32(types.StatusPaused), int32(types.StatusRunning)) {
		w.broadcast()
	}
}

// Stop moves the worker to the terminal stopped state and waits for the loop
// to exit. A task already in hand finishes; queued tasks are discarded.
func (w *Worker) Stop() error {
	w.stopOnce.Do(func() {
		w.status.Store(int32(types.StatusStopped))
		w.broadcast()
		w.logger.Debug("worker stopping",
			"queued", w.QueueSize(),
			"executed", w.ExecutedTasks())

		// never started: claim the start slot so the loop cannot launch later
		if w.started.CompareAndSwap(false, true) {
			close(w.done)
		}
	})

	timer := w.config.Clock.NewTimer(w.config.StopTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return nil
	case <-timer.C():
		return fmt.Errorf("worker %d: %w", w.id, types.ErrStopTimeout)
	}
}

// Done is closed when the loop thread has exited
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Status returns the current status
func (w *Worker) Status() types.WorkerStatus {
	return types.WorkerStatus(w.status.Load())
}

// QueueSize returns the occupancy snapshot: queued tasks not yet executed.
// It is a soft bound and may transiently exceed the physical queue depth.
func (w *Worker) QueueSize() int {
	return int(w.occupancy.Load())
}

// Capacity returns the queue capacity
func (w *Worker) Capacity() int {
	return w.config.QueueCapacity
}

// ExecutedTasks returns the number of tasks invoked by this worker
func (w *Worker) ExecutedTasks() uint64 {
	return w.executed.Load()
}

// FailedTasks returns the number of invoked tasks that reported failure
func (w *Worker) FailedTasks() uint64 {
	return w.failed.Load()
}

// run is the consume loop. Phases per iteration: held tasks, bulk dequeue,
// spin, OS yield, block.
func (w *Worker) run() {
	defer close(w.done)

	// A pinned thread carries a narrowed CPU mask. Exiting while still locked
	// makes the runtime terminate it instead of handing it to other goroutines.
	runtime.LockOSThread()
	if !w.pin() {
		defer runtime.UnlockOSThread()
	}

	w.logger.Debug("worker loop started", "cpu", w.AffinityIndex())

	buf := make([]types.Task, 0, w.config.BatchSize)
	var held []types.Task

	for {
		switch w.Status() {
		case types.StatusStopped:
			w.execute(held)
			return
		case types.StatusPaused:
			w.waitWhilePaused()
			continue
		}

		if len(held) > 0 {
			held = w.execute(held)
			continue
		}

		if batch := w.queue.popBatch(buf[:0]); len(batch) > 0 {
			held = w.execute(batch)
			continue
		}

		task, ok := w.spin()
		if !ok {
			task, ok = w.yield()
		}
		if ok {
			buf = append(buf[:0], task)
			held = w.execute(buf)
			continue
		}

		w.block()
	}
}

// execute invokes tasks in order. If the worker is paused part-way, the
// unexecuted remainder is returned and stays in hand until resume. A stop
// does not interrupt the batch.
func (w *Worker) execute(tasks []types.Task) []types.Task {
	for i, task := range tasks {
		if w.Status() == types.StatusPaused {
			return tasks[i:]
		}
		tasks[i] = nil
		w.occupancy.Add(-1)
		w.invoke(task)
	}
	return nil
}

// invoke runs one task. Tasks isolate their own failures, so there is no
// recover here.
func (w *Worker) invoke(task types.Task) {
	outcome := task.Invoke()
	w.executed.Add(1)
	if !outcome.Success {
		w.failed.Add(1)
	}
}

// spin busy-waits for a task without giving up the OS thread
func (w *Worker) spin() (types.Task, bool) {
	for i := 0; i < w.config.SpinIterations; i++ {
		if w.Status() != types.StatusRunning {
			return nil, false
		}
		if task, ok := w.queue.tryPop(); ok {
			return task, true
		}
		w.relax()
	}
	return nil, false
}

// yield polls for a task while yielding the processor between attempts
func (w *Worker) yield() (types.Task, bool) {
	for i := 0; i < w.config.YieldIterations; i++ {
		if w.Status() != types.StatusRunning {
			return nil, false
		}
		if task, ok := w.queue.tryPop(); ok {
			return task, true
		}
		runtime.Gosched()
	}
	return nil, false
}

// relax is the spin step: a few reads of a line this thread already owns.
// Go has no portable pause instruction, so the loads stand in for it.
func (w *Worker) relax() {
	for i := 0; i < relaxLoads; i++ {
		_ = w.status.Load()
	}
}

// block waits until the worker is stopped, has tasks, or leaves the running
// state. Producers increment occupancy before taking mu to signal, so a
// wakeup cannot be lost between the check and Wait.
func (w *Worker) block() {
	w.mu.Lock()
	for w.Status() == types.StatusRunning && w.occupancy.Load() == 0 {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// waitWhilePaused waits for resume or stop
func (w *Worker) waitWhilePaused() {
	w.mu.Lock()
	for w.Status() == types.StatusPaused {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

func (w *Worker) wake() {
	w.mu.Lock()
	w.cond.Signal()
	w.mu.Unlock()
}

func (w *Worker) broadcast() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// pin applies the affinity index to the loop thread and reports whether the
// pinner accepted it
func (w *Worker) pin() bool {
	index := w.AffinityIndex()
	if index == NoAffinity {
		return false
	}
	if err := w.config.Pinner.Pin(index); err != nil {
		w.logger.Warn("cpu pinning failed", "cpu", index, "error", err)
		return false
	}
	return true
}

// Stats gets worker statistics
func (w *Worker) Stats() Stats {
	return Stats{
		ID:            w.id,
		Status:        w.Status(),
		QueueSize:     w.QueueSize(),
		Capacity:      w.config.QueueCapacity,
		ExecutedTasks: w.ExecutedTasks(),
		FailedTasks:   w.FailedTasks(),
		Affinity:      w.AffinityIndex(),
	}
}

// Stats defines worker statistics
type Stats struct {
	ID            int
	Status        types.WorkerStatus
	QueueSize     int
	Capacity      int
	ExecutedTasks uint64
	FailedTasks   uint64
	Affinity      int
}

// FailureRate returns the share of executed tasks that failed
func (s Stats) FailureRate() float64 {
	if s.ExecutedTasks == 0 {
		return 0
	}
	return float64(s.FailedTasks) / float64(s.ExecutedTasks)
}

// Utilization returns queue occupancy as a fraction of capacity
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.QueueSize) / float64(s.Capacity)
}
