package threadpool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Run executes the task. A panic inside Run is recovered by the pool.
	Run()
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func()

// Run implements the Task interface for TaskFunc.
func (f TaskFunc) Run() {
	f()
}

// Pool represents a thread pool that executes tasks on a set of workers.
type Pool interface {
	// Submit hands a task to the pool. It may block while the queue is
	// full. A task the pool cannot accept is dropped silently.
	Submit(task Task)

	// TrySubmit is Submit reporting why a task was not accepted.
	TrySubmit(task Task) error

	// Stop stops accepting tasks, lets workers drain the queue and
	// waits for every worker to exit.
	Stop()

	// StopNow stops accepting tasks, discards queued tasks and waits
	// for every worker to finish its current task and exit.
	StopNow()

	// Running reports whether the pool accepts tasks.
	Running() bool

	// State returns the lifecycle state of the pool.
	State() State

	// Size returns the number of live workers.
	Size() int

	// QueueSize returns the number of queued tasks.
	QueueSize() int

	// Stats returns a snapshot of the pool counters.
	Stats() Stats

	// Name returns the pool name used in logs and metrics.
	Name() string
}

// State is the lifecycle state of a pool.
type State int32

const (
	StateConstructed State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Stats is a point-in-time snapshot of pool counters. Idle and Busy are
// advisory and may be stale by the time they are read.
type Stats struct {
	Kind      Kind
	Workers   int
	Idle      int
	Busy      int
	Queued    int
	Submitted int64
	Completed int64
	Panicked  int64
	Dropped   int64
	Spawned   int64
	Retired   int64
	Stolen    int64
}

// base carries what every pool kind shares: identity, lifecycle state,
// counters and the task execution boundary.
type base struct {
	kind   Kind
	name   string
	id     string
	config Config
	logger Logger

	state    atomic.Int32
	stopOnce sync.Once

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
	dropped   atomic.Int64
	spawned   atomic.Int64
	live      atomic.Int64
	busy      atomic.Int64
	idle      atomic.Int64
}

func (b *base) init(kind Kind, config Config) {
	b.kind = kind
	b.id = uuid.NewString()
	b.name = config.Name
	if b.name == "" {
		b.name = string(kind) + "-" + b.id[:8]
	}
	b.config = config
	b.logger = config.Logger
}

// Name returns the pool name used in logs and metrics.
func (b *base) Name() string {
	return b.name
}

// ID returns the unique identifier assigned at construction.
func (b *base) ID() string {
	return b.id
}

// State returns the lifecycle state of the pool.
func (b *base) State() State {
	return State(b.state.Load())
}

// Running reports whether the pool accepts tasks.
func (b *base) Running() bool {
	return b.State() == StateRunning
}

// Size returns the number of live workers.
func (b *base) Size() int {
	return int(b.live.Load())
}

func (b *base) start(workers int) {
	b.state.Store(int32(StateRunning))
	b.logger.Info("pool started", "pool", b.name, "id", b.id, "kind", string(b.kind), "workers", workers)
}

func (b *base) beginStop(discard bool) {
	b.state.Store(int32(StateStopping))
	b.logger.Debug("pool stopping", "pool", b.name, "discard", discard)
}

func (b *base) finishStop() {
	b.state.Store(int32(StateStopped))
	b.logger.Info("pool stopped", "pool", b.name,
		"completed", b.completed.Load(), "panicked", b.panicked.Load(), "dropped", b.dropped.Load())
}

// admit performs the checks shared by every Submit path.
func (b *base) admit(task Task) error {
	if err := validation.ValidateNotNil("threadpool", "task", task); err != nil {
		b.dropped.Add(1)
		return err
	}
	if !b.Running() {
		b.dropped.Add(1)
		b.logger.Debug("task rejected", "pool", b.name, "state", b.State().String())
		return tperrors.ErrNotRunning
	}
	b.submitted.Add(1)
	return nil
}

// reject undoes admit for a task the queue refused.
func (b *base) reject(err error) error {
	b.submitted.Add(-1)
	b.dropped.Add(1)
	b.logger.Warn("task dropped", "pool", b.name, "error", err)
	return err
}

func (b *base) workerStarted(id int) {
	b.spawned.Add(1)
	if b.config.OnWorkerStart != nil {
		b.config.OnWorkerStart(id)
	}
	b.logger.Debug("worker started", "pool", b.name, "worker", id)
}

func (b *base) workerStopped(id int) {
	b.live.Add(-1)
	if b.config.OnWorkerStop != nil {
		b.config.OnWorkerStop(id)
	}
	b.logger.Debug("worker stopped", "pool", b.name, "worker", id)
}

// execute runs task inside the panic boundary. A panicking task is
// reported and the worker keeps serving.
func (b *base) execute(workerID int, task Task) {
	b.busy.Add(1)
	defer b.busy.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			b.panicked.Add(1)
			err := panicError(r)
			b.logger.Error("task panicked", "pool", b.name, "worker", workerID, "error", fmt.Sprintf("%+v", err))
			if b.config.PanicHandler != nil {
				b.config.PanicHandler(task, err)
			}
		}
	}()

	task.Run()
	b.completed.Add(1)
}

func (b *base) stats() Stats {
	return Stats{
		Kind:      b.kind,
		Workers:   int(b.live.Load()),
		Idle:      int(b.idle.Load()),
		Busy:      int(b.busy.Load()),
		Submitted: b.submitted.Load(),
		Completed: b.completed.Load(),
		Panicked:  b.panicked.Load(),
		Dropped:   b.dropped.Load(),
		Spawned:   b.spawned.Load(),
	}
}

func panicError(r any) error {
	return pkgerrors.WithStack(fmt.Errorf("%w: %v", tperrors.ErrTaskPanicked, r))
}
