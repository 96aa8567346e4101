// Package metrics provides Prometheus instrumentation for taskpool components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name unless Config.Namespace overrides it.
const DefaultNamespace = "taskpool"

// Registry holds all metric instances for taskpool components.
type Registry struct {
	// Pool Metrics
	TasksSubmitted  *prometheus.CounterVec
	TasksExecuted   *prometheus.CounterVec
	TasksPanicked   *prometheus.CounterVec
	TaskDuration    *prometheus.HistogramVec
	TaskQueueWait   *prometheus.HistogramVec
	PoolWorkers     *prometheus.GaugeVec
	PoolIdleWorkers *prometheus.GaugeVec
	PoolQueuedTasks *prometheus.GaugeVec
	WorkersRetired  *prometheus.CounterVec
	TasksStolen     *prometheus.CounterVec

	// Scheduler Metrics
	SchedulesFired   *prometheus.CounterVec
	SchedulesActive  *prometheus.GaugeVec
	SchedulesSkipped *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by taskpool components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = For(Config{})
}

// NewRegistry registers a fresh set of collectors with reg. Registering
// twice on the same registerer panics; use For to share one set.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg})
}

// NewRegistryWithConfig creates a metrics registry honoring the namespace and
// constant labels of config.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)
	labels := config.Labels

	return &Registry{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "tasks_submitted_total",
				Help:        "Total number of tasks accepted by a pool",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "tasks_executed_total",
				Help:        "Total number of tasks run by pool workers",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		TasksPanicked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "tasks_panicked_total",
				Help:        "Total number of tasks that panicked",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "task_duration_seconds",
				Help:        "Time spent executing tasks",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		TaskQueueWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "task_queue_wait_seconds",
				Help:        "Time tasks spent queued before a worker picked them up",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		PoolWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "workers",
				Help:        "Number of live workers",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		PoolIdleWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "idle_workers",
				Help:        "Number of workers waiting for a task (advisory)",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		PoolQueuedTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "queued_tasks",
				Help:        "Number of queued tasks",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		WorkersRetired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "workers_retired_total",
				Help:        "Total number of elastic workers retired after idling",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		TasksStolen: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "pool",
				Name:        "tasks_stolen_total",
				Help:        "Total number of tasks taken from another worker's bucket",
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		SchedulesFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "fired_total",
				Help:        "Total number of schedule firings handed to a pool",
				ConstLabels: labels,
			},
			[]string{"scheduler_name", "schedule_id"},
		),

		SchedulesActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "schedules",
				Help:        "Number of registered schedules",
				ConstLabels: labels,
			},
			[]string{"scheduler_name"},
		),

		SchedulesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "scheduler",
				Name:        "skipped_total",
				Help:        "Total number of firings the pool refused",
				ConstLabels: labels,
			},
			[]string{"scheduler_name", "schedule_id"},
		),
	}
}
