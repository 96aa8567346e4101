package threadpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/taskpool/pkg/metrics"
)

// MetricsPool wraps a Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool

	// mu serializes the counter deltas taken from Stats.
	mu          sync.Mutex
	lastRetired int64
	lastStolen  int64
}

var (
	_ Pool                   = (*MetricsPool)(nil)
	_ metrics.Instrumentable = (*MetricsPool)(nil)
)

// NewWithMetrics wraps pool so that every submission and execution is
// recorded under name. Pools wrapped with the same config share one
// metrics.Registry and are told apart by their pool_name label.
func NewWithMetrics(pool Pool, name string, config metrics.Config) *MetricsPool {
	if name == "" {
		name = pool.Name()
	}
	mp := &MetricsPool{
		pool: pool,
		name: name,
	}
	_ = mp.EnableMetrics(config)
	return mp
}

// updateMetrics refreshes the state gauges and advances the counters
// that the wrapped pool tracks itself.
func (mp *MetricsPool) updateMetrics() {
	if !mp.enabled.Load() {
		return
	}
	reg := mp.registry.Load()
	stats := mp.pool.Stats()

	reg.PoolWorkers.WithLabelValues(mp.name).Set(float64(stats.Workers))
	reg.PoolIdleWorkers.WithLabelValues(mp.name).Set(float64(stats.Idle))
	reg.PoolQueuedTasks.WithLabelValues(mp.name).Set(float64(stats.Queued))

	mp.mu.Lock()
	defer mp.mu.Unlock()
	if d := stats.Retired - mp.lastRetired; d > 0 {
		reg.WorkersRetired.WithLabelValues(mp.name).Add(float64(d))
		mp.lastRetired = stats.Retired
	}
	if d := stats.Stolen - mp.lastStolen; d > 0 {
		reg.TasksStolen.WithLabelValues(mp.name).Add(float64(d))
		mp.lastStolen = stats.Stolen
	}
}

// Submit adds a task to the pool for execution.
func (mp *MetricsPool) Submit(task Task) {
	_ = mp.TrySubmit(task)
}

// TrySubmit adds a task to the pool and reports why it was refused.
func (mp *MetricsPool) TrySubmit(task Task) error {
	if task == nil {
		return mp.pool.TrySubmit(nil)
	}
	wrapped := &metricsTask{
		original:   task,
		pool:       mp,
		submitTime: time.Now(),
	}

	err := mp.pool.TrySubmit(wrapped)
	if err == nil && mp.enabled.Load() {
		mp.registry.Load().TasksSubmitted.WithLabelValues(mp.name).Inc()
	}
	mp.updateMetrics()
	return err
}

// metricsTask wraps a Task to collect execution metrics.
type metricsTask struct {
	original   Task
	pool       *MetricsPool
	submitTime time.Time
}

// Run runs the original task and records metrics. A panic is counted
// and passed on to the pool's boundary.
func (mt *metricsTask) Run() {
	start := time.Now()
	enabled := mt.pool.enabled.Load()
	reg := mt.pool.registry.Load()
	name := mt.pool.name

	if enabled {
		reg.TaskQueueWait.WithLabelValues(name).Observe(start.Sub(mt.submitTime).Seconds())
	}

	defer func() {
		r := recover()
		if enabled {
			reg.TaskDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
			reg.TasksExecuted.WithLabelValues(name).Inc()
			if r != nil {
				reg.TasksPanicked.WithLabelValues(name).Inc()
			}
		}
		if r != nil {
			panic(r)
		}
	}()

	mt.original.Run()
}

// Stop drains the pool and records the final state.
func (mp *MetricsPool) Stop() {
	mp.pool.Stop()
	mp.updateMetrics()
}

// StopNow discards queued tasks and records the final state.
func (mp *MetricsPool) StopNow() {
	mp.pool.StopNow()
	mp.updateMetrics()
}

// Running reports whether the wrapped pool accepts tasks.
func (mp *MetricsPool) Running() bool {
	return mp.pool.Running()
}

// State returns the lifecycle state of the wrapped pool.
func (mp *MetricsPool) State() State {
	return mp.pool.State()
}

// Size returns the current number of workers.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// QueueSize returns the current number of queued tasks.
func (mp *MetricsPool) QueueSize() int {
	return mp.pool.QueueSize()
}

// Stats returns the wrapped pool's counters and refreshes the gauges.
func (mp *MetricsPool) Stats() Stats {
	mp.updateMetrics()
	return mp.pool.Stats()
}

// Name returns the wrapped pool's name.
func (mp *MetricsPool) Name() string {
	return mp.pool.Name()
}

// Unwrap returns the wrapped pool.
func (mp *MetricsPool) Unwrap() Pool {
	return mp.pool
}

// EnableMetrics enables metrics collection.
func (mp *MetricsPool) EnableMetrics(config metrics.Config) error {
	mp.registry.Store(metrics.For(config))
	mp.enabled.Store(config.Enabled)
	mp.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (mp *MetricsPool) DisableMetrics() {
	mp.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mp *MetricsPool) MetricsEnabled() bool {
	return mp.enabled.Load()
}

// StatsCollector exports a pool's Stats at scrape time. Register it with
// a prometheus.Registerer instead of wrapping the pool.
type StatsCollector struct {
	pool Pool

	workers   *prometheus.Desc
	idle      *prometheus.Desc
	busy      *prometheus.Desc
	queued    *prometheus.Desc
	submitted *prometheus.Desc
	completed *prometheus.Desc
	panicked  *prometheus.Desc
	dropped   *prometheus.Desc
	spawned   *prometheus.Desc
	retired   *prometheus.Desc
	stolen    *prometheus.Desc
}

var _ prometheus.Collector = (*StatsCollector)(nil)

// NewStatsCollector returns a collector for pool labeled with its name.
func NewStatsCollector(pool Pool) *StatsCollector {
	labels := prometheus.Labels{"pool_name": pool.Name(), "kind": string(pool.Stats().Kind)}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(metrics.DefaultNamespace, "pool_stats", name), help, nil, labels)
	}
	return &StatsCollector{
		pool:      pool,
		workers:   desc("workers", "Live workers"),
		idle:      desc("idle_workers", "Workers waiting for a task (advisory)"),
		busy:      desc("busy_workers", "Workers running a task (advisory)"),
		queued:    desc("queued_tasks", "Queued tasks"),
		submitted: desc("submitted_total", "Tasks accepted"),
		completed: desc("completed_total", "Tasks that returned normally"),
		panicked:  desc("panicked_total", "Tasks that panicked"),
		dropped:   desc("dropped_total", "Submissions the pool refused"),
		spawned:   desc("spawned_workers_total", "Workers started"),
		retired:   desc("retired_workers_total", "Elastic workers retired after idling"),
		stolen:    desc("stolen_total", "Tasks taken from another worker's bucket"),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.workers, c.idle, c.busy, c.queued, c.submitted, c.completed,
		c.panicked, c.dropped, c.spawned, c.retired, c.stolen,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stats()
	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	gauge(c.workers, s.Workers)
	gauge(c.idle, s.Idle)
	gauge(c.busy, s.Busy)
	gauge(c.queued, s.Queued)
	counter(c.submitted, s.Submitted)
	counter(c.completed, s.Completed)
	counter(c.panicked, s.Panicked)
	counter(c.dropped, s.Dropped)
	counter(c.spawned, s.Spawned)
	counter(c.retired, s.Retired)
	counter(c.stolen, s.Stolen)
}
