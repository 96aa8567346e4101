package syncqueue

import "github.com/gammazero/deque"

// bucketDeque is the double-ended storage of one Stealing bucket. Like ring, it
// leaves the capacity bound to the owning queue.
type bucketDeque[T any] struct {
	items deque.Deque[T]
}

func (b *bucketDeque[T]) len() int {
	return b.items.Len()
}

func (b *bucketDeque[T]) pushBack(item T) {
	b.items.PushBack(item)
}

// popBack takes the newest item, the owner's end.
func (b *bucketDeque[T]) popBack() (T, bool) {
	if b.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return b.items.PopBack(), true
}

// popFront takes the oldest item, the thief's end.
func (b *bucketDeque[T]) popFront() (T, bool) {
	if b.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return b.items.PopFront(), true
}

func (b *bucketDeque[T]) clear() {
	b.items.Clear()
}
