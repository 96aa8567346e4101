package syncqueue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/taskpool/internal/testutil"
)

func TestNewStealingPanicsOnInvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		buckets  int
		capacity int
		wait     time.Duration
	}{
		{"zero buckets", 0, 1, time.Second},
		{"zero capacity", 1, 0, time.Second},
		{"zero wait", 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic")
				}
			}()
			NewStealing[int](tt.buckets, tt.capacity, tt.wait)
		})
	}
}

func TestStealingOwnBucketIsLIFO(t *testing.T) {
	s := NewStealing[string](2, 10, time.Second)
	defer s.Stop(true)

	for _, v := range []string{"a", "b", "c"} {
		testutil.AssertEqual(t, s.Enqueue(v, 0), StatusOK)
	}

	for _, want := range []string{"c", "b", "a"} {
		got, st := s.Dequeue(0)
		testutil.AssertEqual(t, st, StatusOK)
		testutil.AssertEqual(t, got, want)
	}
	testutil.AssertEqual(t, s.Steals(), uint64(0))
}

func TestStealingStealsOldestFromOtherBucket(t *testing.T) {
	s := NewStealing[int](2, 10, time.Second)
	defer s.Stop(true)

	for i := 1; i <= 3; i++ {
		s.Enqueue(i, 1)
	}

	got, st := s.Dequeue(0)
	testutil.AssertEqual(t, st, StatusOK)
	testutil.AssertEqual(t, got, 1)
	testutil.AssertEqual(t, s.Steals(), uint64(1))

	// the owner still sees its own newest item first
	got, _ = s.Dequeue(1)
	testutil.AssertEqual(t, got, 3)
	testutil.AssertEqual(t, s.Len(1), 1)
}

func TestStealingPrefersLocalWork(t *testing.T) {
	s := NewStealing[string](2, 10, time.Second)
	defer s.Stop(true)

	s.Enqueue("remote", 1)
	s.Enqueue("local", 0)

	got, _ := s.Dequeue(0)
	testutil.AssertEqual(t, got, "local")
	testutil.AssertEqual(t, s.Steals(), uint64(0))
}

func TestStealingScansInIndexOrder(t *testing.T) {
	s := NewStealing[string](4, 10, time.Second)
	defer s.Stop(true)

	s.Enqueue("from-3", 3)
	s.Enqueue("from-1", 1)
	s.Enqueue("from-2", 2)

	for _, want := range []string{"from-1", "from-2", "from-3"} {
		got, st := s.Dequeue(0)
		testutil.AssertEqual(t, st, StatusOK)
		testutil.AssertEqual(t, got, want)
	}
	testutil.AssertEqual(t, s.Steals(), uint64(3))
}

func TestStealingDequeueTimesOutWhenEmpty(t *testing.T) {
	s := NewStealing[int](3, 1, 20*time.Millisecond)
	defer s.Stop(true)

	_, st := s.Dequeue(2)
	testutil.AssertEqual(t, st, StatusTimeout)
}

func TestStealingEnqueueTimesOutPerBucket(t *testing.T) {
	s := NewStealing[int](2, 1, 20*time.Millisecond)
	defer s.Stop(true)

	testutil.AssertEqual(t, s.Enqueue(1, 0), StatusOK)
	testutil.AssertEqual(t, s.Full(0), true)
	testutil.AssertEqual(t, s.Enqueue(2, 0), StatusTimeout)

	// a full bucket does not affect its neighbours
	testutil.AssertEqual(t, s.Enqueue(3, 1), StatusOK)
	testutil.AssertEqual(t, s.Size(), 2)
}

func TestStealingFreedSlotWakesProducerOfThatBucket(t *testing.T) {
	s := NewStealing[int](2, 1, 5*time.Second)
	s.Enqueue(1, 0)
	s.Enqueue(2, 1)

	result := make(chan Status, 1)
	go func() { result <- s.Enqueue(3, 1) }()

	time.Sleep(20 * time.Millisecond)
	got, st := s.Dequeue(1)
	testutil.AssertEqual(t, st, StatusOK)
	testutil.AssertEqual(t, got, 2)

	select {
	case st := <-result:
		testutil.AssertEqual(t, st, StatusOK)
	case <-time.After(time.Second):
		t.Fatal("producer of the freed bucket was not woken")
	}
	s.Stop(true)
}

func TestStealingStopDrainsThenReportsStopped(t *testing.T) {
	s := NewStealing[int](2, 4, time.Second)
	s.Enqueue(1, 0)
	s.Enqueue(2, 1)
	s.Stop(false)

	testutil.AssertEqual(t, s.Enqueue(3, 0), StatusStopped)

	seen := 0
	for {
		_, st := s.Dequeue(0)
		if st == StatusStopped {
			break
		}
		testutil.AssertEqual(t, st, StatusOK)
		seen++
	}
	testutil.AssertEqual(t, seen, 2)
}

func TestStealingStopDiscard(t *testing.T) {
	s := NewStealing[int](2, 4, time.Second)
	s.Enqueue(1, 0)
	s.Enqueue(2, 1)
	s.Stop(true)

	testutil.AssertEqual(t, s.Size(), 0)
	testutil.AssertEqual(t, s.Empty(0), true)
	testutil.AssertEqual(t, s.Empty(1), true)

	_, st := s.Dequeue(1)
	testutil.AssertEqual(t, st, StatusStopped)
}

func TestStealingStopWakesAllWaiters(t *testing.T) {
	s := NewStealing[int](4, 1, 10*time.Second)

	var g errgroup.Group
	for b := 0; b < 4; b++ {
		g.Go(func() error {
			if _, st := s.Dequeue(b); st != StatusStopped {
				t.Errorf("bucket %d: got %v, want stopped", b, st)
			}
			return nil
		})
	}

	time.Sleep(20 * time.Millisecond)
	s.Stop(false)
	testutil.AssertNoError(t, g.Wait())
}

func TestStealingBucketOutOfRangePanics(t *testing.T) {
	s := NewStealing[int](2, 1, time.Second)
	defer s.Stop(true)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for out-of-range bucket")
		}
	}()
	s.Enqueue(1, 2)
}

func TestStealingEachItemDeliveredExactlyOnce(t *testing.T) {
	const (
		buckets = 4
		items   = 4000
	)
	s := NewStealing[int](buckets, 16, 10*time.Millisecond)

	seen := make([]int32, items)
	var delivered int64
	var consumers sync.WaitGroup
	for b := 0; b < buckets; b++ {
		consumers.Add(1)
		go func(bucket int) {
			defer consumers.Done()
			for {
				v, st := s.Dequeue(bucket)
				switch st {
				case StatusOK:
					atomic.AddInt32(&seen[v], 1)
					atomic.AddInt64(&delivered, 1)
				case StatusStopped:
					return
				}
			}
		}(b)
	}

	// all producers feed bucket 0 and 1 so the other workers must steal
	var g errgroup.Group
	for p := 0; p < 2; p++ {
		g.Go(func() error {
			for v := p; v < items; v += 2 {
				for s.Enqueue(v, p) != StatusOK {
				}
			}
			return nil
		})
	}
	testutil.AssertNoError(t, g.Wait())

	s.Stop(false)
	consumers.Wait()

	testutil.AssertEqual(t, atomic.LoadInt64(&delivered), int64(items))
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("item %d delivered %d times", v, n)
		}
	}
	testutil.AssertEqual(t, s.Size(), 0)
}
