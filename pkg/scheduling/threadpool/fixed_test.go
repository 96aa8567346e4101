package threadpool

import (
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/taskpool/internal/testutil"
	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
)

// gate is a task that blocks its worker until released.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) Run() {
	close(g.started)
	<-g.release
}

func (g *gate) wait(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(testutil.TestTimeout):
		t.Fatal("gate task never started")
	}
}

func counting(n *atomic.Int64) Task {
	return TaskFunc(func() { n.Add(1) })
}

func TestNewFixed(t *testing.T) {
	tests := []struct {
		name        string
		workers     int
		capacity    int
		wantWorkers int
		wantCap     int
		expectPanic bool
	}{
		{"valid params", 2, 10, 2, 10, false},
		{"single worker", 1, 1, 1, 1, false},
		{"defaults", 0, 0, runtime.GOMAXPROCS(0), DefaultQueueCapacity, false},
		{"negative workers", -1, 10, 0, 0, true},
		{"negative capacity", 2, -1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if tt.expectPanic && r == nil {
					t.Error("expected panic but didn't get one")
				}
				if !tt.expectPanic && r != nil {
					t.Errorf("unexpected panic: %v", r)
				}
			}()

			pool := NewFixed(tt.workers, tt.capacity)
			defer pool.Stop()

			testutil.AssertEqual(t, pool.Size(), tt.wantWorkers)
			testutil.AssertEqual(t, pool.queue.Cap(), tt.wantCap)
			testutil.AssertEqual(t, pool.State(), StateRunning)
			testutil.AssertEqual(t, pool.Stats().Kind, KindFixed)
		})
	}
}

func TestFixedRunsTasksInOrderWithOneWorker(t *testing.T) {
	pool := NewFixed(1, 100)

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 50; i++ {
		pool.Submit(TaskFunc(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	pool.Stop()

	testutil.AssertEqual(t, len(order), 50)
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestFixedSubmitBlocksWhileQueueFull(t *testing.T) {
	pool := NewFixed(1, 1)
	g := newGate()
	pool.Submit(g)
	g.wait(t)
	pool.Submit(TaskFunc(func() {}))

	var returned atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Submit(TaskFunc(func() {}))
		returned.Store(true)
	}()

	testutil.Consistently(t, func() bool { return !returned.Load() }, 50*time.Millisecond, 5*time.Millisecond)
	testutil.AssertEqual(t, pool.QueueSize(), 1)

	close(g.release)
	<-done
	pool.Stop()

	testutil.AssertEqual(t, pool.Stats().Completed, int64(3))
}

func TestFixedStopDrainsQueuedTasks(t *testing.T) {
	pool := NewFixed(1, 100)
	g := newGate()
	pool.Submit(g)
	g.wait(t)

	var executed atomic.Int64
	for i := 0; i < 50; i++ {
		pool.Submit(counting(&executed))
	}
	testutil.AssertEqual(t, pool.QueueSize(), 50)

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()

	testutil.Eventually(t, func() bool { return pool.State() == StateStopping }, time.Second, time.Millisecond)
	err := pool.TrySubmit(counting(&executed))
	if !errors.Is(err, tperrors.ErrNotRunning) {
		t.Errorf("TrySubmit while stopping = %v, want ErrNotRunning", err)
	}

	close(g.release)
	<-stopped

	testutil.AssertEqual(t, executed.Load(), int64(50))
	testutil.AssertEqual(t, pool.State(), StateStopped)
	testutil.AssertEqual(t, pool.Size(), 0)
	testutil.AssertEqual(t, pool.QueueSize(), 0)
}

func TestFixedStopNowDiscardsQueuedTasks(t *testing.T) {
	pool := NewFixed(1, 100)
	g := newGate()
	pool.Submit(g)
	g.wait(t)

	var executed atomic.Int64
	for i := 0; i < 50; i++ {
		pool.Submit(counting(&executed))
	}

	stopped := make(chan struct{})
	go func() {
		pool.StopNow()
		close(stopped)
	}()

	testutil.Eventually(t, func() bool { return pool.QueueSize() == 0 }, time.Second, time.Millisecond)
	close(g.release)
	<-stopped

	testutil.AssertEqual(t, executed.Load(), int64(0))
	testutil.AssertEqual(t, pool.Stats().Completed, int64(1))
}

func TestFixedStopIsIdempotent(t *testing.T) {
	pool := NewFixed(2, 10)
	pool.Stop()
	pool.Stop()
	pool.StopNow()

	testutil.AssertEqual(t, pool.State(), StateStopped)
	testutil.AssertEqual(t, pool.Running(), false)
}

func TestFixedConcurrentStopCallsAllWait(t *testing.T) {
	pool := NewFixed(1, 10)
	g := newGate()
	pool.Submit(g)
	g.wait(t)

	var returned atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Stop()
			returned.Add(1)
		}()
	}

	testutil.Consistently(t, func() bool { return returned.Load() == 0 }, 30*time.Millisecond, 5*time.Millisecond)
	close(g.release)
	wg.Wait()
	testutil.AssertEqual(t, pool.State(), StateStopped)
}

func TestFixedRejectsAfterStop(t *testing.T) {
	pool := NewFixed(2, 10)
	pool.Stop()

	var executed atomic.Int64
	pool.Submit(counting(&executed))
	err := pool.TrySubmit(counting(&executed))

	if !errors.Is(err, tperrors.ErrNotRunning) {
		t.Errorf("TrySubmit after stop = %v, want ErrNotRunning", err)
	}
	stats := pool.Stats()
	testutil.AssertEqual(t, stats.Dropped, int64(2))
	testutil.AssertEqual(t, stats.Submitted, int64(0))
	testutil.AssertEqual(t, executed.Load(), int64(0))
}

func TestFixedRejectsNilTask(t *testing.T) {
	pool := NewFixed(1, 10)
	defer pool.Stop()

	err := pool.TrySubmit(nil)
	var verr *tperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("TrySubmit(nil) = %v, want validation error", err)
	}
	testutil.AssertEqual(t, verr.Field, "task")
	testutil.AssertEqual(t, verr.Hint, "provide a valid task")
	pool.Submit(nil)
	testutil.AssertEqual(t, pool.Stats().Dropped, int64(2))
}

func TestFixedWorkerSurvivesPanic(t *testing.T) {
	var (
		mu      sync.Mutex
		handled []error
	)
	pool, err := NewFixedWithConfig(Config{
		Workers:       1,
		QueueCapacity: 10,
		PanicHandler: func(_ Task, err error) {
			mu.Lock()
			handled = append(handled, err)
			mu.Unlock()
		},
	})
	testutil.AssertNoError(t, err)

	var executed atomic.Int64
	pool.Submit(TaskFunc(func() { panic("boom") }))
	pool.Submit(counting(&executed))
	pool.Stop()

	testutil.AssertEqual(t, executed.Load(), int64(1))
	stats := pool.Stats()
	testutil.AssertEqual(t, stats.Panicked, int64(1))
	testutil.AssertEqual(t, stats.Completed, int64(1))
	testutil.AssertEqual(t, stats.Spawned, int64(1))

	if len(handled) != 1 {
		t.Fatalf("panic handler called %d times, want 1", len(handled))
	}
	if !errors.Is(handled[0], tperrors.ErrTaskPanicked) {
		t.Errorf("handler error = %v, want ErrTaskPanicked", handled[0])
	}
	if !strings.Contains(handled[0].Error(), "boom") {
		t.Errorf("handler error %q does not mention the panic value", handled[0])
	}
}

func TestFixedConcurrentProducers(t *testing.T) {
	pool := NewFixed(4, 16)

	var executed atomic.Int64
	var g errgroup.Group
	for p := 0; p < 4; p++ {
		g.Go(func() error {
			for i := 0; i < 250; i++ {
				if err := pool.TrySubmit(counting(&executed)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	testutil.AssertNoError(t, g.Wait())
	pool.Stop()

	stats := pool.Stats()
	testutil.AssertEqual(t, executed.Load(), int64(1000))
	testutil.AssertEqual(t, stats.Submitted, int64(1000))
	testutil.AssertEqual(t, stats.Completed, int64(1000))
}

func TestFixedWorkerHooks(t *testing.T) {
	var starts, stops atomic.Int32
	pool, err := NewFixedWithConfig(Config{
		Workers:       3,
		OnWorkerStart: func(int) { starts.Add(1) },
		OnWorkerStop:  func(int) { stops.Add(1) },
	})
	testutil.AssertNoError(t, err)

	testutil.Eventually(t, func() bool { return starts.Load() == 3 }, time.Second, time.Millisecond)
	pool.Stop()
	testutil.AssertEqual(t, stops.Load(), int32(3))
}

func TestFixedLogsLifecycleAndPanics(t *testing.T) {
	logger, logs := testutil.NewLogger(slog.LevelDebug)

	pool, err := NewFixedWithConfig(Config{Name: "logged", Workers: 1, Logger: logger})
	testutil.AssertNoError(t, err)
	pool.Submit(TaskFunc(func() { panic("kaboom") }))
	pool.Stop()

	testutil.AssertLogged(t, logs, "pool started", "worker started", "task panicked", "kaboom", "pool stopped", "pool=logged")
	testutil.AssertEqual(t, logs.Count("worker started"), 1)
}

func TestFixedDefaultNameUsesInstanceID(t *testing.T) {
	a := NewFixed(1, 1)
	b := NewFixed(1, 1)
	defer a.Stop()
	defer b.Stop()

	testutil.AssertNotEqual(t, a.ID(), b.ID())
	testutil.AssertNotEqual(t, a.Name(), b.Name())
	if !strings.HasPrefix(a.Name(), "fixed-") {
		t.Errorf("Name() = %q, want fixed- prefix", a.Name())
	}
	if !strings.HasPrefix(a.ID(), strings.TrimPrefix(a.Name(), "fixed-")) {
		t.Errorf("Name() %q is not derived from ID() %q", a.Name(), a.ID())
	}
}
