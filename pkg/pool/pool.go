// Package pool provides the orchestrator that owns the workers and routes
// submissions through the active dispatch strategy.
package pool

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jzx17/gothreadpool/pkg/strategy"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// State is the pool lifecycle state. Transitions are one-way:
// Uninitialized -> Initialized -> ShutDown.
type State int32

const (
	// StateUninitialized means Init has not run
	StateUninitialized State = iota
	// StateInitialized means workers are running
	StateInitialized
	// StateShutDown is terminal
	StateShutDown
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateShutDown:
		return "shut_down"
	default:
		return "unknown"
	}
}

// Pool owns a fixed set of workers and a swappable dispatch strategy
type Pool struct {
	config Config
	logger *slog.Logger
	state  atomic.Int32

	// lifecycle serializes Init and Shutdown
	lifecycle sync.Mutex

	// mu guards strategy and workers. AddTask holds the read side through the
	// enqueue, so a strategy swap or shutdown waits for in-flight admissions.
	mu       sync.RWMutex
	strategy strategy.Strategy
	workers  []*worker.Worker

	admitted atomic.Uint64
	rejected atomic.Uint64
}

// New creates a pool. No workers exist until Init.
func New(config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	cfg := *config
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Pool{
		config: cfg,
		logger: cfg.Logger.With("component", "pool"),
	}, nil
}

// Init creates and starts Config.Workers workers, or DefaultWorkerCount when
// that is zero.
func (p *Pool) Init() error {
	n := p.config.Workers
	if n == 0 {
		n = DefaultWorkerCount()
	}
	return p.InitWithWorkers(n)
}

// InitWithWorkers creates and starts n workers. The first successful call
// wins; later calls, and any call after Shutdown, are no-ops.
func (p *Pool) InitWithWorkers(n int) error {
	if n <= 0 {
		return types.NewConfigError("pool", "worker count", n, "must be positive")
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.State() != StateUninitialized {
		return nil
	}

	workers := make([]*worker.Worker, n)
	cpus := runtime.NumCPU()
	for i := range workers {
		w, err := worker.New(i, p.config.workerConfig())
		if err != nil {
			return fmt.Errorf("failed to create worker %d: %w", i, err)
		}
		w.SetAffinityIndex(i % cpus)
		workers[i] = w
	}

	p.mu.Lock()
	if p.strategy != nil {
		if err := strategy.Validate(p.strategy, n); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	p.workers = workers
	p.mu.Unlock()

	for _, w := range workers {
		w.Start()
	}
	p.state.Store(int32(StateInitialized))

	p.logger.Info("pool initialized",
		"workers", n,
		"queue_capacity", p.config.QueueCapacity,
		"pinned", !p.config.DisablePinning,
		"strategy", strategy.NameOf(p.Strategy()))
	return nil
}

// SetStrategy installs s as the dispatch strategy. It waits for in-flight
// admissions to finish. A strategy that cannot serve the current worker
// count is refused with a ConfigError.
func (p *Pool) SetStrategy(s strategy.Strategy) error {
	if s == nil {
		return types.NewConfigError("pool", "strategy", nil, "must not be nil")
	}

	p.mu.Lock()
	if n := len(p.workers); n > 0 {
		if err := strategy.Validate(s, n); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	prev := p.strategy
	p.strategy = s
	p.mu.Unlock()

	p.logger.Info("strategy installed",
		"strategy", strategy.NameOf(s),
		"previous", strategy.NameOf(prev))
	return nil
}

// AddTask routes task to the worker chosen by the active strategy. It never
// blocks on queue space. Without a strategy or workers the task is rejected
// and handed back.
func (p *Pool) AddTask(category types.Category, task types.Task) types.Admission {
	admission, workerID := p.dispatch(category, task)

	if admission.OK() {
		p.admitted.Add(1)
	} else {
		p.rejected.Add(1)
	}
	p.config.Observer.ObserveAdmission(category, workerID, admission)
	return admission
}

func (p *Pool) dispatch(category types.Category, task types.Task) (types.Admission, int) {
	if task == nil {
		return types.Rejected(nil), NoWorker
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.strategy == nil {
		return types.RejectedWith(task, types.ErrNoStrategy), NoWorker
	}
	if len(p.workers) == 0 {
		return types.RejectedWith(task, types.ErrNoWorkers), NoWorker
	}

	w := p.strategy.SelectWorker(p.workers, category)
	if w == nil {
		return types.RejectedWith(task, types.ErrNoWorkers), NoWorker
	}
	return w.AddTask(task), w.ID()
}

// Shutdown stops every worker in parallel and releases them. Tasks still
// queued are discarded. It is idempotent, and the pool cannot be
// reinitialized afterwards.
func (p *Pool) Shutdown() error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	if p.State() == StateShutDown {
		return nil
	}

	p.mu.Lock()
	workers := p.workers
	p.workers = nil
	p.mu.Unlock()
	p.state.Store(int32(StateShutDown))

	var discarded int
	var g errgroup.Group
	for _, w := range workers {
		g.Go(w.Stop)
	}
	err := g.Wait()
	for _, w := range workers {
		discarded += w.QueueSize()
	}

	p.logger.Info("pool shut down",
		"workers", len(workers),
		"discarded", discarded,
		"admitted", p.admitted.Load(),
		"rejected", p.rejected.Load())

	if err != nil {
		return fmt.Errorf("pool shutdown: %w", err)
	}
	return nil
}

// PauseAll pauses every worker. Queued tasks are retained.
func (p *Pool) PauseAll() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, w := range p.workers {
		w.Pause()
	}
}

// ResumeAll resumes every paused worker
func (p *Pool) ResumeAll() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, w := range p.workers {
		w.Resume()
	}
}

// State returns the lifecycle state
func (p *Pool) State() State {
	return State(p.state.Load())
}

// Size returns the number of live workers
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}

// Strategy returns the active strategy, or nil
func (p *Pool) Strategy() strategy.Strategy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.strategy
}

// Workers returns a copy of the worker slice
func (p *Pool) Workers() []*worker.Worker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*worker.Worker, len(p.workers))
	copy(out, p.workers)
	return out
}

// WorkerStats gets statistics of all workers
func (p *Pool) WorkerStats() []worker.Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := make([]worker.Stats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}

// Stats gets aggregated pool statistics
func (p *Pool) Stats() Stats {
	stats := Stats{
		State:    p.State(),
		Strategy: strategy.NameOf(p.Strategy()),
		Admitted: p.admitted.Load(),
		Rejected: p.rejected.Load(),
	}

	for _, ws := range p.WorkerStats() {
		stats.Workers++
		stats.QueueSize += ws.QueueSize
		stats.QueueCapacity += ws.Capacity
		stats.ExecutedTasks += ws.ExecutedTasks
		stats.FailedTasks += ws.FailedTasks
		if ws.Status == types.StatusPaused {
			stats.PausedWorkers++
		}
	}
	return stats
}

// Stats defines pool statistics
type Stats struct {
	State         State
	Strategy      string
	Workers       int
	PausedWorkers int
	QueueSize     int
	QueueCapacity int
	ExecutedTasks uint64
	FailedTasks   uint64
	Admitted      uint64
	Rejected      uint64
}

// Utilization returns total occupancy as a fraction of total capacity
func (s Stats) Utilization() float64 {
	if s.QueueCapacity == 0 {
		return 0
	}
	return float64(s.QueueSize) / float64(s.QueueCapacity)
}
