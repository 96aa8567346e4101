package syncqueue

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stealing is a set of per-worker buckets sharing one lock and one pair of
// conditions. A worker takes its own newest item first (LIFO) and, when its
// bucket is empty, steals the oldest item (FIFO) of another bucket.
//
// Theft scans buckets in index order and takes from the first non-empty one,
// so low-indexed buckets are drained by thieves first. There is no fairness
// guarantee between buckets.
type Stealing[T any] struct {
	mu       mutex
	notFull  signal
	notEmpty signal
	buckets  []bucketDeque[T]
	capacity int
	wait     time.Duration
	total    int
	stopped  bool

	steals atomic.Uint64
}

// NewStealing creates a set of n buckets, each holding at most capacity items.
// Blocking operations give up after wait. It panics on non-positive arguments.
func NewStealing[T any](n, capacity int, wait time.Duration) *Stealing[T] {
	if n <= 0 {
		panic("syncqueue: bucket count must be positive")
	}
	if capacity <= 0 {
		panic("syncqueue: capacity must be positive")
	}
	if wait <= 0 {
		panic("syncqueue: wait must be positive")
	}

	return &Stealing[T]{
		buckets:  make([]bucketDeque[T], n),
		capacity: capacity,
		wait:     wait,
	}
}

func (s *Stealing[T]) checkBucket(bucket int) {
	if bucket < 0 || bucket >= len(s.buckets) {
		panic(fmt.Sprintf("syncqueue: bucket %d out of range [0,%d)", bucket, len(s.buckets)))
	}
}

// Enqueue appends item to the tail of bucket. It returns StatusTimeout if the
// bucket stayed full for the whole wait and StatusStopped after Stop.
func (s *Stealing[T]) Enqueue(item T, bucket int) Status {
	s.checkBucket(bucket)

	s.mu.Lock()
	defer s.mu.Unlock()

	ready := await(&s.mu, &s.notFull, s.wait, func() bool {
		return s.stopped || s.buckets[bucket].len() < s.capacity
	})
	if !ready {
		return StatusTimeout
	}
	if s.stopped {
		return StatusStopped
	}

	s.buckets[bucket].pushBack(item)
	s.total++
	s.notEmpty.notify()
	return StatusOK
}

// Dequeue waits until any bucket holds an item, then takes the newest item of
// bucket or, failing that, steals the oldest item of another bucket.
//
// StatusTimeout means no work was found and the caller should simply try
// again. StatusStopped is only returned once the set is stopped and empty.
func (s *Stealing[T]) Dequeue(bucket int) (T, Status) {
	s.checkBucket(bucket)

	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	ready := await(&s.mu, &s.notEmpty, s.wait, func() bool {
		return s.stopped || s.total > 0
	})
	if !ready {
		return zero, StatusTimeout
	}

	item, ok := s.buckets[bucket].popBack()
	if !ok {
		item, ok = s.steal(bucket)
	}
	if !ok {
		if s.stopped {
			return zero, StatusStopped
		}
		return zero, StatusTimeout
	}

	s.total--
	// producers may be waiting on any bucket, so wake them all to recheck
	s.notFull.broadcast()
	return item, StatusOK
}

func (s *Stealing[T]) steal(thief int) (T, bool) {
	for i := range s.buckets {
		if i == thief || s.buckets[i].len() == 0 {
			continue
		}
		item, ok := s.buckets[i].popFront()
		if ok {
			s.steals.Add(1)
		}
		return item, ok
	}
	var zero T
	return zero, false
}

// Stop wakes every waiter and rejects further enqueues. If discard is true
// all buckets are cleared. Calls after the first are no-ops.
func (s *Stealing[T]) Stop(discard bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	if discard {
		for i := range s.buckets {
			s.buckets[i].clear()
		}
		s.total = 0
	}
	s.notFull.broadcast()
	s.notEmpty.broadcast()
}

// Size returns the number of items across all buckets.
func (s *Stealing[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Len returns the number of items in bucket.
func (s *Stealing[T]) Len(bucket int) int {
	s.checkBucket(bucket)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets[bucket].len()
}

// Empty reports whether bucket holds no items.
func (s *Stealing[T]) Empty(bucket int) bool {
	return s.Len(bucket) == 0
}

// Full reports whether bucket is at capacity.
func (s *Stealing[T]) Full(bucket int) bool {
	return s.Len(bucket) >= s.capacity
}

// Buckets returns the number of buckets.
func (s *Stealing[T]) Buckets() int {
	return len(s.buckets)
}

// Cap returns the per-bucket capacity bound.
func (s *Stealing[T]) Cap() int {
	return s.capacity
}

// Steals returns how many items were taken from a bucket other than the
// caller's own.
func (s *Stealing[T]) Steals() uint64 {
	return s.steals.Load()
}

// Stopped reports whether Stop has been called.
func (s *Stealing[T]) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
