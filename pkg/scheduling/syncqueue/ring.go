package syncqueue

import (
	ringbuf "github.com/hedzr/go-ringbuf/v2"
	"github.com/hedzr/go-ringbuf/v2/mpmc"
)

// ring is FIFO storage for the bounded queues. The owning queue enforces the
// capacity bound itself, the ring only has to be at least that large.
type ring[T any] struct {
	buf  mpmc.RingBuffer[T]
	size int
}

func newRing[T any](capacity int) *ring[T] {
	// the ring buffer keeps one slot free to tell full from empty
	return &ring[T]{buf: ringbuf.New[T](uint32(capacity + 1))}
}

func (r *ring[T]) push(item T) bool {
	if err := r.buf.Enqueue(item); err != nil {
		return false
	}
	r.size++
	return true
}

func (r *ring[T]) pop() (T, bool) {
	item, err := r.buf.Dequeue()
	if err != nil {
		var zero T
		return zero, false
	}
	r.size--
	return item, true
}

func (r *ring[T]) clear() {
	for r.size > 0 {
		if _, ok := r.pop(); !ok {
			r.size = 0
		}
	}
}

func (r *ring[T]) len() int {
	return r.size
}
