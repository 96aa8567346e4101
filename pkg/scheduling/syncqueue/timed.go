package syncqueue

import "time"

// Timed is a FIFO queue with a capacity bound whose waits are limited to a
// fixed duration. It lets a consumer notice sustained idleness without a
// separate reaper.
type Timed[T any] struct {
	q    *fifo[T]
	wait time.Duration
}

// NewTimed creates a queue holding at most capacity items whose blocking
// operations give up after wait. It panics if either value is not positive.
func NewTimed[T any](capacity int, wait time.Duration) *Timed[T] {
	if wait <= 0 {
		panic("syncqueue: wait must be positive")
	}
	return &Timed[T]{q: newFIFO[T](capacity), wait: wait}
}

// Enqueue appends item. It returns StatusTimeout if the queue stayed full for
// the whole wait and StatusStopped if the queue has been stopped.
func (t *Timed[T]) Enqueue(item T) Status {
	return t.q.put(item, t.wait)
}

// Dequeue removes the oldest item. It returns StatusTimeout if nothing arrived
// within the wait. StatusStopped is only returned once the queue is stopped
// and empty.
func (t *Timed[T]) Dequeue() (T, Status) {
	return t.q.take(t.wait)
}

// Stop wakes every waiter and rejects further enqueues. If discard is true
// pending items are dropped. Calls after the first are no-ops.
func (t *Timed[T]) Stop(discard bool) {
	t.q.stop(discard)
}

// Size returns the number of queued items.
func (t *Timed[T]) Size() int {
	return t.q.size()
}

// Empty reports whether the queue holds no items.
func (t *Timed[T]) Empty() bool {
	return t.q.size() == 0
}

// Full reports whether the queue is at capacity.
func (t *Timed[T]) Full() bool {
	return t.q.full()
}

// Cap returns the capacity bound.
func (t *Timed[T]) Cap() int {
	return t.q.capacity
}

// Wait returns the bound applied to every blocking operation.
func (t *Timed[T]) Wait() time.Duration {
	return t.wait
}

// Stopped reports whether Stop has been called.
func (t *Timed[T]) Stopped() bool {
	return t.q.isStopped()
}
