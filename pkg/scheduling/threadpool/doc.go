/*
Package threadpool runs tasks on pools of worker goroutines built on the
synchronized queues of package syncqueue.

Three pool kinds share the Pool interface:

  - FixedPool: a constant number of workers fed by one bounded FIFO queue.
  - ElasticPool: a core of workers that grows toward MaxWorkers while every
    worker is busy and shrinks back to the core after IdleWait without work.
  - StealingPool: one bucket per worker, round-robin submission, and idle
    workers stealing the oldest task of another bucket.

Basic usage:

	pool := threadpool.NewFixed(4, 100) // 4 workers, queue capacity 100
	defer pool.Stop()

	pool.Submit(threadpool.TaskFunc(func() {
		// Do work
	}))

Results:

Tasks return nothing. Use SubmitWithResult or Call to get a Handle:

	h := threadpool.Call(pool, func() int { return 6 * 7 })
	v, err := h.Get()

A handle whose task was not accepted is invalid and never resolves, so
prefer Handle.Wait with a context when the pool may be stopping.

Shutdown:

Stop refuses new tasks, lets workers drain everything already queued and
returns once every worker has exited. StopNow discards the queued tasks
instead. Both are idempotent. Neither may be called from inside a task.

Panics:

A panicking task does not kill its worker. The panic becomes an error
wrapping errors.ErrTaskPanicked with a stack trace. It is logged, counted
in Stats.Panicked and passed to Config.PanicHandler.

Configuration:

	cfg, err := threadpool.LoadConfig("pool.yaml")
	if err != nil {
		return err
	}
	cfg.Logger = slog.Default()
	pool, err := threadpool.New(cfg)

with pool.yaml such as:

	kind: elastic
	name: ingest
	workers: 4
	max_workers: 16
	queue_capacity: 1000
	idle_wait: 10s

Metrics:

NewWithMetrics wraps any Pool with Prometheus instrumentation from
package metrics. NewStatsCollector exports a pool's Stats at scrape time.
*/
package threadpool
