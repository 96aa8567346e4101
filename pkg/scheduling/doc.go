/*
Package scheduling groups the task execution packages.

  - syncqueue: synchronized queues with blocking, timed and stealing dequeue
  - threadpool: fixed, elastic and work-stealing worker pools
  - scheduler: cron and interval firings submitted to a pool

A pool is started by its constructor and stopped with Stop, which drains
queued tasks, or StopNow, which discards them:

	pool, err := threadpool.New(threadpool.DefaultConfig(threadpool.KindElastic))
	if err != nil {
		return err
	}
	defer pool.Stop()

	s, err := scheduler.NewWithConfig(scheduler.Config{Pool: pool})
	if err != nil {
		return err
	}
	_ = s.Every("heartbeat", time.Minute, threadpool.TaskFunc(beat))
	_ = s.Start()
	defer func() { <-s.Stop() }()
*/
package scheduling
