package syncqueue

// Bounded is a FIFO queue with a capacity bound and no timeouts.
//
// Enqueue blocks while the queue is full and Dequeue blocks while it is empty.
// Both return as soon as the queue is stopped.
type Bounded[T any] struct {
	q *fifo[T]
}

// NewBounded creates a queue holding at most capacity items.
// It panics if capacity is not positive.
func NewBounded[T any](capacity int) *Bounded[T] {
	return &Bounded[T]{q: newFIFO[T](capacity)}
}

// Enqueue appends item, blocking until there is room. If the queue is stopped
// the item is dropped without notice; use Put to find out.
func (b *Bounded[T]) Enqueue(item T) {
	b.Put(item)
}

// Put is Enqueue that reports whether the item was accepted.
func (b *Bounded[T]) Put(item T) bool {
	return b.q.put(item, 0) == StatusOK
}

// Dequeue removes the oldest item, blocking until one exists. After Stop it
// keeps returning pending items and reports false once the queue is empty.
func (b *Bounded[T]) Dequeue() (T, bool) {
	item, st := b.q.take(0)
	return item, st == StatusOK
}

// Stop wakes every waiter and rejects further enqueues. If discard is true
// pending items are dropped. Calls after the first are no-ops.
func (b *Bounded[T]) Stop(discard bool) {
	b.q.stop(discard)
}

// Size returns the number of queued items.
func (b *Bounded[T]) Size() int {
	return b.q.size()
}

// Empty reports whether the queue holds no items.
func (b *Bounded[T]) Empty() bool {
	return b.q.size() == 0
}

// Full reports whether the queue is at capacity.
func (b *Bounded[T]) Full() bool {
	return b.q.full()
}

// Cap returns the capacity bound.
func (b *Bounded[T]) Cap() int {
	return b.q.capacity
}

// Stopped reports whether Stop has been called.
func (b *Bounded[T]) Stopped() bool {
	return b.q.isStopped()
}
