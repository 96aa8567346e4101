// Package metrics provides Prometheus instrumentation for taskpool components.
//
// # Overview
//
// The metrics package instruments:
//   - Thread pools (submissions, executions, panics, durations, queue wait)
//   - Pool state (live workers, idle workers, queued tasks)
//   - Schedulers (firings handed to a pool, refused firings, registered schedules)
//
// # Quick Start
//
// Wrap any pool with the metrics decorator:
//
//	pool := threadpool.NewFixed(4, 200)
//	mp := threadpool.NewWithMetrics(pool, "ingest", metrics.DefaultConfig())
//	defer mp.Stop()
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	mp := threadpool.NewWithMetrics(pool, "ingest", metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	})
//
// Pools wrapped with the same Config share one Registry (see For); their
// series are told apart by the pool_name label.
//
// # Available Metrics
//
// ## Pool Metrics
//
//   - taskpool_pool_tasks_submitted_total: Total number of tasks accepted by a pool
//   - taskpool_pool_tasks_executed_total: Total number of tasks run by pool workers
//   - taskpool_pool_tasks_panicked_total: Total number of tasks that panicked
//   - taskpool_pool_task_duration_seconds: Time spent executing tasks
//   - taskpool_pool_task_queue_wait_seconds: Time tasks spent queued
//   - taskpool_pool_workers: Number of live workers
//   - taskpool_pool_idle_workers: Number of waiting workers (advisory)
//   - taskpool_pool_queued_tasks: Number of queued tasks
//   - taskpool_pool_workers_retired_total: Elastic workers retired after idling
//   - taskpool_pool_tasks_stolen_total: Tasks taken from another worker's bucket
//
// ## Scheduler Metrics
//
//   - taskpool_scheduler_fired_total: Firings handed to a pool
//   - taskpool_scheduler_skipped_total: Firings the pool refused
//   - taskpool_scheduler_schedules: Registered schedules
//
// threadpool.NewStatsCollector additionally exports a pool's Stats snapshot
// at scrape time without wrapping the pool.
//
// # Labels
//
//   - pool_name: User-provided name for the pool instance
//   - scheduler_name: User-provided name for the scheduler instance
//   - schedule_id: Identifier the schedule was registered under
package metrics
