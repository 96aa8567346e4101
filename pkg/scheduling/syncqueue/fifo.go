package syncqueue

import "time"

// fifo is the shared core of Bounded and Timed: ring storage behind one mutex
// with "not full" and "not empty" conditions.
type fifo[T any] struct {
	mu       mutex
	notFull  signal
	notEmpty signal
	items    *ring[T]
	capacity int
	stopped  bool
}

func newFIFO[T any](capacity int) *fifo[T] {
	if capacity <= 0 {
		panic("syncqueue: capacity must be positive")
	}
	return &fifo[T]{
		items:    newRing[T](capacity),
		capacity: capacity,
	}
}

func (q *fifo[T]) put(item T, timeout time.Duration) Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	ready := await(&q.mu, &q.notFull, timeout, func() bool {
		return q.stopped || q.items.len() < q.capacity
	})
	if !ready {
		return StatusTimeout
	}
	if q.stopped {
		return StatusStopped
	}

	q.items.push(item)
	q.notEmpty.notify()
	return StatusOK
}

func (q *fifo[T]) take(timeout time.Duration) (T, Status) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ready := await(&q.mu, &q.notEmpty, timeout, func() bool {
		return q.stopped || q.items.len() > 0
	})
	if !ready {
		var zero T
		return zero, StatusTimeout
	}

	// a stopped queue keeps handing out what it holds until it is empty
	item, ok := q.items.pop()
	if !ok {
		return item, StatusStopped
	}
	q.notFull.notify()
	return item, StatusOK
}

func (q *fifo[T]) stop(discard bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	if discard {
		q.items.clear()
	}
	q.notFull.broadcast()
	q.notEmpty.broadcast()
}

func (q *fifo[T]) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len()
}

func (q *fifo[T]) full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len() >= q.capacity
}

func (q *fifo[T]) isStopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}
