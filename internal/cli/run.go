package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/jzx17/gothreadpool/pkg/config"
	promobs "github.com/jzx17/gothreadpool/pkg/observability/prometheus"
	"github.com/jzx17/gothreadpool/pkg/pool"
	"github.com/jzx17/gothreadpool/pkg/retry"
	"github.com/jzx17/gothreadpool/pkg/strategy"
)

type runOptions struct {
	workers       int
	strategy      string
	duration      time.Duration
	producers     int
	rate          float64
	tasks         int64
	work          time.Duration
	failEvery     int64
	retries       int
	statsInterval time.Duration
	metricsAddr   string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a pool and drive it with synthetic load",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPool(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.workers, "workers", "w", 0, "worker count (overrides config, 0 keeps it)")
	f.StringVarP(&opts.strategy, "strategy", "s", "", "dispatch strategy: load, category or round-robin")
	f.DurationVarP(&opts.duration, "duration", "d", 5*time.Second, "how long to generate load")
	f.IntVarP(&opts.producers, "producers", "p", 4, "number of submitting goroutines")
	f.Float64VarP(&opts.rate, "rate", "r", 0, "submissions per second across producers (0 is unlimited)")
	f.Int64Var(&opts.tasks, "tasks", 0, "stop after this many submissions (0 runs for --duration)")
	f.DurationVar(&opts.work, "work", 50*time.Microsecond, "busy time per task")
	f.Int64Var(&opts.failEvery, "fail-every", 0, "make every n-th task fail (0 disables)")
	f.IntVar(&opts.retries, "retries", 5, "admission attempts per task on a full queue (0 drops immediately)")
	f.DurationVar(&opts.statsInterval, "stats-interval", time.Second, "how often to print worker stats (0 disables)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics on this address (overrides config)")
	return cmd
}

func runPool(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Pool.Workers = opts.workers
	}
	if opts.strategy != "" {
		cfg.Strategy = opts.strategy
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if noColor {
		color.NoColor = true
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", "error", err)
	}

	registry := prometheus.NewRegistry()
	metrics := promobs.NewMetrics(registry, cfg.Metrics.Namespace)

	poolCfg := cfg.PoolConfig()
	poolCfg.Logger = logger
	poolCfg.Observer = metrics

	p, err := pool.New(poolCfg)
	if err != nil {
		return err
	}
	s, err := cfg.NewStrategy()
	if err != nil {
		return err
	}
	if err := p.SetStrategy(s); err != nil {
		return err
	}
	if err := p.Init(); err != nil {
		return err
	}
	if err := metrics.RegisterPool(registry, p); err != nil {
		_ = p.Shutdown()
		return fmt.Errorf("failed to register pool metrics: %w", err)
	}

	out := cmd.OutOrStdout()
	if crr, ok := s.(*strategy.CategoryRoundRobin); ok {
		if layout, err := crr.Layout(p.Size()); err == nil {
			writef(out, "partitions: %s\n", layout)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.duration)
	defer cancel()

	load := LoadConfig{
		Producers: opts.producers,
		Rate:      opts.rate,
		Tasks:     opts.tasks,
		Work:      opts.work,
		FailEvery: opts.failEvery,
	}
	if opts.retries > 0 {
		load.Retry = retry.NewExponentialBackoff(opts.retries, 50*time.Microsecond, retry.WithJitter(0.2)).
			WithMaxDelay(10 * time.Millisecond)
	}
	gen := NewGenerator(p, load, logger)

	g, gctx := errgroup.WithContext(ctx)

	var srv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promobs.Handler(registry))
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if opts.statsInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(opts.statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					RenderStats(out, p.Stats(), p.WorkerStats())
				}
			}
		})
	}

	var result LoadResult
	g.Go(func() error {
		var err error
		result, err = gen.Run(gctx)
		// a task budget can finish before the deadline
		cancel()
		return err
	})

	runErr := g.Wait()

	// let admitted tasks drain before stopping
	drainUntil := time.Now().Add(opts.duration / 10)
	for p.Stats().QueueSize > 0 && time.Now().Before(drainUntil) {
		time.Sleep(time.Millisecond)
	}
	RenderStats(out, p.Stats(), p.WorkerStats())

	if err := p.Shutdown(); err != nil {
		logger.Error("pool shutdown failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	writef(out, "submitted=%d admitted=%d dropped=%d failed=%d completed=%d\n",
		result.Submitted, result.Admitted, result.Dropped, result.Failed, result.Completed)
	if result.Dropped > 0 {
		_, _ = color.New(color.FgYellow).Fprintf(out, "%d tasks were dropped on full queues\n", result.Dropped)
	}
	return runErr
}
