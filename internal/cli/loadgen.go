package cli

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jzx17/gothreadpool/pkg/retry"
	"github.com/jzx17/gothreadpool/pkg/task"
	"github.com/jzx17/gothreadpool/pkg/types"
)

var errSynthetic = errors.New("synthetic task failure")

// LoadConfig describes a synthetic workload
type LoadConfig struct {
	// Producers is the number of submitting goroutines
	Producers int

	// Rate caps total submissions per second (0 means unlimited)
	Rate float64

	// Tasks stops the run after this many submissions (0 means until ctx ends)
	Tasks int64

	// Work is how long each task keeps its worker busy
	Work time.Duration

	// FailEvery makes every n-th task return an error (0 disables)
	FailEvery int64

	// Retry is the resubmission policy for full queues (nil drops rejected tasks)
	Retry retry.Policy

	// Clock drives retry backoff (optional)
	Clock types.Clock
}

// LoadResult summarizes a run
type LoadResult struct {
	Submitted int64
	Admitted  int64
	Dropped   int64
	Failed    int64
	Completed int64
}

// Generator drives a Submitter with categorized synthetic tasks
type Generator struct {
	config  LoadConfig
	target  types.Submitter
	factory *task.Factory
	limiter *rate.Limiter
	logger  *slog.Logger

	seq       atomic.Int64
	submitted atomic.Int64
	admitted  atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
	completed atomic.Int64
}

// NewGenerator creates a load generator
func NewGenerator(target types.Submitter, config LoadConfig, logger *slog.Logger) *Generator {
	if config.Producers <= 0 {
		config.Producers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Generator{
		config: config,
		target: target,
		logger: logger.With("component", "loadgen"),
	}
	g.factory = task.NewFactory(func(error) { g.failed.Add(1) }, g.logger)
	if config.Rate > 0 {
		burst := int(config.Rate / 10)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(config.Rate), burst)
	}
	return g
}

// Run submits until ctx ends or the task budget is spent
func (g *Generator) Run(ctx context.Context) (LoadResult, error) {
	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < g.config.Producers; i++ {
		eg.Go(func() error {
			return g.produce(ctx)
		})
	}

	err := eg.Wait()
	return g.Result(), err
}

// Result returns the counters so far
func (g *Generator) Result() LoadResult {
	return LoadResult{
		Submitted: g.submitted.Load(),
		Admitted:  g.admitted.Load(),
		Dropped:   g.dropped.Load(),
		Failed:    g.failed.Load(),
		Completed: g.completed.Load(),
	}
}

func (g *Generator) produce(ctx context.Context) error {
	for {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil
			}
		} else if ctx.Err() != nil {
			return nil
		}

		n := g.seq.Add(1)
		if g.config.Tasks > 0 && n > g.config.Tasks {
			return nil
		}

		category := types.Categories[int(n%int64(len(types.Categories)))]
		g.submitted.Add(1)
		if g.submit(ctx, category, g.newTask(n)) {
			g.admitted.Add(1)
		} else {
			g.dropped.Add(1)
		}
	}
}

func (g *Generator) submit(ctx context.Context, category types.Category, t types.Task) bool {
	if g.config.Retry == nil {
		return g.target.AddTask(category, t).OK()
	}

	_, err := retry.Submit(ctx, g.target, category, t, g.config.Retry, g.config.Clock)
	if err != nil {
		g.logger.Debug("task dropped", "task_id", t.ID(), "category", category.String(), "error", err)
		return false
	}
	return true
}

func (g *Generator) newTask(n int64) types.Task {
	work := g.config.Work
	fail := g.config.FailEvery > 0 && n%g.config.FailEvery == 0

	return g.factory.Future(func() error {
		if work > 0 {
			spinFor(work)
		}
		if fail {
			return errSynthetic
		}
		return nil
	}, func(types.Outcome) {
		g.completed.Add(1)
	})
}

// spinFor keeps the thread busy for d, simulating CPU-bound work
func spinFor(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
