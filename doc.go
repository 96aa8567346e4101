/*
Package taskpool provides worker pools and the synchronized queues they are
built on.

Queues (pkg/scheduling/syncqueue):
  - Bounded: blocking FIFO with fixed capacity
  - Timed: FIFO whose consumers give up after an idle wait
  - Stealing: per-worker buckets where idle consumers take from peers

Pools (pkg/scheduling/threadpool):
  - FixedPool: a constant number of workers over a Bounded queue
  - ElasticPool: grows to a maximum under load and retires idle workers
  - StealingPool: one bucket per worker with round-robin submission

Handles returned by SubmitWithResult carry a task's value or panic back to
the caller. Pools can be wrapped with Prometheus instrumentation
(NewWithMetrics, NewStatsCollector) and driven on cron schedules by
pkg/scheduling/scheduler.

Example usage:

	import "github.com/vnykmshr/taskpool/pkg/scheduling/threadpool"

	pool := threadpool.NewFixed(4, 100)
	defer pool.Stop()

	h := threadpool.SubmitWithResult(pool, func() (int, error) { return 42, nil })
	v, err := h.Get()
*/
package taskpool
