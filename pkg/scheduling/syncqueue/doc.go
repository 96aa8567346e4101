/*
Package syncqueue provides the synchronized task queues the thread pools are built on.

Three queues are available:

  - Bounded: FIFO queue with a capacity bound. Producers block while it is full,
    consumers block while it is empty, and neither side ever times out.
  - Timed: the same FIFO contract, but every wait is bounded by a fixed duration
    and resolves to a Status (StatusOK, StatusTimeout or StatusStopped).
  - Stealing: a set of per-worker buckets. A worker pops its own bucket LIFO and,
    when that is empty, steals the oldest item of another bucket.

Basic usage:

	q := syncqueue.NewTimed[func()](100, time.Second)
	defer q.Stop(false)

	if st := q.Enqueue(func() { fmt.Println("hello") }); st != syncqueue.StatusOK {
		log.Printf("enqueue: %v", st)
	}

	task, st := q.Dequeue()
	switch st {
	case syncqueue.StatusOK:
		task()
	case syncqueue.StatusTimeout:
		// nothing arrived within the wait
	case syncqueue.StatusStopped:
		// queue stopped and drained
	}

Stopping:

Stop(discard) is irreversible and idempotent. With discard=false, items already
queued are still handed out, and a dequeue only reports StatusStopped once the
queue is both stopped and empty. With discard=true, pending items are cleared
immediately. Enqueue never succeeds after Stop.

A timeout is a liveness signal for the caller, not an error. The stealing queue
also reports StatusTimeout when a wait ends without finding any work.

Build with -tags deadlock to guard every queue mutex with go-deadlock's
lock-order and lock-timeout detector.
*/
package syncqueue
