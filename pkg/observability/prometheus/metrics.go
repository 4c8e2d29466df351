// Package prometheus exports pool admissions and worker state as Prometheus
// metrics
package prometheus

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jzx17/gothreadpool/pkg/pool"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "gothreadpool"

// Admission result label values
const (
	ResultAdmitted = "admitted"
	ResultRejected = "rejected"
)

// StatsSource is the read side of a pool
type StatsSource interface {
	Stats() pool.Stats
	WorkerStats() []worker.Stats
}

// Metrics holds the admission counters. It implements pool.Observer.
type Metrics struct {
	namespace string

	AdmissionsTotal *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
}

// NewMetrics creates the admission metrics on registerer
func NewMetrics(registerer prometheus.Registerer, namespace string) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Metrics{
		namespace: namespace,
		AdmissionsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admissions_total",
				Help:      "Total number of task submissions by category and result",
			},
			[]string{"category", "result"},
		),
		RejectionsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Total number of rejected submissions by category and reason",
			},
			[]string{"category", "reason"},
		),
	}
}

// ObserveAdmission implements pool.Observer
func (m *Metrics) ObserveAdmission(category types.Category, _ int, admission types.Admission) {
	c := category.String()
	if admission.OK() {
		m.AdmissionsTotal.WithLabelValues(c, ResultAdmitted).Inc()
		return
	}
	m.AdmissionsTotal.WithLabelValues(c, ResultRejected).Inc()
	m.RejectionsTotal.WithLabelValues(c, Reason(admission.Err())).Inc()
}

// Reason maps a rejection error to a bounded label value
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, types.ErrQueueFull):
		return "queue_full"
	case errors.Is(err, types.ErrNoStrategy):
		return "no_strategy"
	case errors.Is(err, types.ErrNoWorkers):
		return "no_workers"
	case errors.Is(err, types.ErrWorkerStopped):
		return "worker_stopped"
	case errors.Is(err, types.ErrNilTask):
		return "nil_task"
	default:
		return "other"
	}
}

// RegisterPool registers a collector that reads source on every scrape
func (m *Metrics) RegisterPool(registerer prometheus.Registerer, source StatsSource) error {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return registerer.Register(NewPoolCollector(m.namespace, source))
}

// Handler serves the metrics gathered from gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// PoolCollector turns pool and worker stats into metrics at scrape time
type PoolCollector struct {
	source StatsSource

	workers       *prometheus.Desc
	pausedWorkers *prometheus.Desc
	queueSize     *prometheus.Desc
	queueCapacity *prometheus.Desc
	executed      *prometheus.Desc
	failed        *prometheus.Desc
	status        *prometheus.Desc
}

// NewPoolCollector creates a collector reading source
func NewPoolCollector(namespace string, source StatsSource) *PoolCollector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	workerLabels := []string{"worker"}

	return &PoolCollector{
		source: source,
		workers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "workers"),
			"Number of live workers", []string{"strategy"}, nil),
		pausedWorkers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "paused_workers"),
			"Number of paused workers", nil, nil),
		queueSize: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "queue_size"),
			"Tasks queued on a worker and not yet executed", workerLabels, nil),
		queueCapacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "queue_capacity"),
			"Queue capacity of a worker", workerLabels, nil),
		executed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "executed_tasks_total"),
			"Tasks invoked by a worker", workerLabels, nil),
		failed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "failed_tasks_total"),
			"Invoked tasks that reported failure", workerLabels, nil),
		status: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "worker", "status"),
			"Worker status (0 running, 1 paused, 2 stopped)", workerLabels, nil),
	}
}

// Describe implements prometheus.Collector
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workers
	ch <- c.pausedWorkers
	ch <- c.queueSize
	ch <- c.queueCapacity
	ch <- c.executed
	ch <- c.failed
	ch <- c.status
}

// Collect implements prometheus.Collector
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.workers, prometheus.GaugeValue, float64(stats.Workers), stats.Strategy)
	ch <- prometheus.MustNewConstMetric(c.pausedWorkers, prometheus.GaugeValue, float64(stats.PausedWorkers))

	for _, ws := range c.source.WorkerStats() {
		id := strconv.Itoa(ws.ID)
		ch <- prometheus.MustNewConstMetric(c.queueSize, prometheus.GaugeValue, float64(ws.QueueSize), id)
		ch <- prometheus.MustNewConstMetric(c.queueCapacity, prometheus.GaugeValue, float64(ws.Capacity), id)
		ch <- prometheus.MustNewConstMetric(c.executed, prometheus.CounterValue, float64(ws.ExecutedTasks), id)
		ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(ws.FailedTasks), id)
		ch <- prometheus.MustNewConstMetric(c.status, prometheus.GaugeValue, float64(ws.Status), id)
	}
}
