package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/metrics"
	"github.com/vnykmshr/taskpool/pkg/scheduling/threadpool"
)

var (
	// ErrScheduleExists is returned when an id is already registered.
	ErrScheduleExists = errors.New("schedule already exists")

	// ErrScheduleNotFound is returned for an unknown id.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrAlreadyRunning is returned by Start on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler already running")
)

// DefaultMaxSchedules bounds the number of registered schedules.
const DefaultMaxSchedules = 10000

const maxIDLength = 255

// Config holds scheduler configuration.
type Config struct {
	// Name labels the scheduler in logs and metrics.
	Name string

	// Pool receives every firing. If nil the scheduler creates a fixed
	// pool with default settings and stops it in Stop.
	Pool threadpool.Pool

	// Location is the time zone cron expressions are evaluated in.
	// Defaults to time.Local.
	Location *time.Location

	// MaxSchedules bounds the number of registered schedules.
	MaxSchedules int

	// SkipIfPending skips a firing while the previous task of the same
	// schedule is still queued or running.
	SkipIfPending bool

	// Logger receives scheduler events. Defaults to a no-op logger.
	Logger threadpool.Logger

	// Metrics records firings when set.
	Metrics *metrics.Registry
}

// Entry describes a registered schedule.
type Entry struct {
	ID      string
	Spec    string
	Next    time.Time
	Prev    time.Time
	Fired   int64
	Skipped int64
}

type entry struct {
	id      string
	spec    string
	cronID  cron.EntryID
	task    threadpool.Task
	pending atomic.Bool
	fired   atomic.Int64
	skipped atomic.Int64
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Scheduler submits tasks into a pool on cron expressions or fixed
// intervals. Tasks run on the pool's workers, never on the scheduler.
type Scheduler struct {
	name          string
	pool          threadpool.Pool
	ownPool       bool
	location      *time.Location
	maxSchedules  int
	skipIfPending bool
	logger        threadpool.Logger
	metrics       *metrics.Registry
	parser        cron.Parser
	cron          *cron.Cron

	mu      sync.Mutex
	entries map[string]*entry
	state   state
	stopped chan struct{}
}

// New creates a scheduler that submits into pool.
func New(pool threadpool.Pool) *Scheduler {
	s, err := NewWithConfig(Config{Pool: pool})
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) (*Scheduler, error) {
	if err := validation.ValidateNonNegative("scheduler", "max_schedules", cfg.MaxSchedules); err != nil {
		return nil, err
	}

	s := &Scheduler{
		name:          cfg.Name,
		pool:          cfg.Pool,
		location:      cfg.Location,
		maxSchedules:  cfg.MaxSchedules,
		skipIfPending: cfg.SkipIfPending,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		parser:        newParser(),
		entries:       make(map[string]*entry),
		stopped:       make(chan struct{}),
	}
	if s.name == "" {
		s.name = "scheduler-" + uuid.NewString()[:8]
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.maxSchedules == 0 {
		s.maxSchedules = DefaultMaxSchedules
	}
	if s.logger == nil {
		s.logger = threadpool.NewNopLogger()
	}
	if s.pool == nil {
		s.pool = threadpool.NewFixed(0, 0)
		s.ownPool = true
	}

	log := cronLogger{s.logger}
	s.cron = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.location),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log)),
	)
	return s, nil
}

// Name returns the scheduler name used in logs and metrics.
func (s *Scheduler) Name() string {
	return s.name
}

// Schedule registers task to be submitted whenever expr fires. expr is a
// cron expression with an optional leading seconds field, or a
// descriptor such as "@hourly" or "@every 5m".
func (s *Scheduler) Schedule(id, expr string, task threadpool.Task) error {
	if err := validation.ValidateNotEmpty("scheduler", "expr", expr); err != nil {
		return err
	}
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return tperrors.NewValidationError("scheduler", "expr", expr, err.Error())
	}
	return s.add(id, expr, schedule, task)
}

// Every registers task to be submitted every d. cron works in whole
// seconds, so d is truncated to seconds and never less than one second.
func (s *Scheduler) Every(id string, d time.Duration, task threadpool.Task) error {
	if err := validation.ValidatePositiveDuration("scheduler", "interval", d); err != nil {
		return err
	}
	return s.add(id, "@every "+d.String(), cron.Every(d), task)
}

func (s *Scheduler) add(id, spec string, schedule cron.Schedule, task threadpool.Task) error {
	if err := validation.ValidateNotEmpty("scheduler", "id", id); err != nil {
		return err
	}
	if len(id) > maxIDLength {
		return tperrors.NewValidationError("scheduler", "id", id, fmt.Sprintf("longer than %d characters", maxIDLength))
	}
	if err := validation.ValidateNotNil("scheduler", "task", task); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStopped {
		return tperrors.NewOperationError("scheduler", "Schedule", tperrors.ErrStopped).WithContext("id=" + id)
	}
	if _, exists := s.entries[id]; exists {
		return tperrors.NewOperationError("scheduler", "Schedule", ErrScheduleExists).WithContext("id=" + id)
	}
	if len(s.entries) >= s.maxSchedules {
		return tperrors.NewOperationError("scheduler", "Schedule", tperrors.ErrCapacityExceeded).
			WithContext(fmt.Sprintf("max_schedules=%d", s.maxSchedules))
	}

	e := &entry{id: id, spec: spec, task: task}
	e.cronID = s.cron.Schedule(schedule, cron.FuncJob(func() { s.fire(e) }))
	s.entries[id] = e
	s.updateGauge()
	s.logger.Debug("schedule added", "scheduler", s.name, "id", id, "spec", spec)
	return nil
}

// fire hands the schedule's task to the pool.
func (s *Scheduler) fire(e *entry) {
	task := e.task
	if s.skipIfPending {
		// a run discarded by the pool's StopNow never clears pending
		if !s.pool.Running() {
			e.pending.Store(false)
		}
		if !e.pending.CompareAndSwap(false, true) {
			s.skip(e, "previous run still pending", true)
			return
		}
		task = threadpool.TaskFunc(func() {
			defer e.pending.Store(false)
			e.task.Run()
		})
	}

	if err := s.pool.TrySubmit(task); err != nil {
		if s.skipIfPending {
			e.pending.Store(false)
		}
		s.skip(e, err.Error(), tperrors.IsRetryable(err))
		return
	}

	e.fired.Add(1)
	if s.metrics != nil {
		s.metrics.SchedulesFired.WithLabelValues(s.name, e.id).Inc()
	}
}

// skip records a firing that did not reach the pool. retryable marks
// refusals a later firing may get past, such as a full queue.
func (s *Scheduler) skip(e *entry, reason string, retryable bool) {
	e.skipped.Add(1)
	if s.metrics != nil {
		s.metrics.SchedulesSkipped.WithLabelValues(s.name, e.id).Inc()
	}
	s.logger.Warn("schedule firing skipped", "scheduler", s.name, "id", e.id, "reason", reason, "retryable", retryable)
}

// Remove unregisters id. It reports whether id was registered.
func (s *Scheduler) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cron.Remove(e.cronID)
	delete(s.entries, id)
	s.updateGauge()
	return true
}

// Next returns the next time id fires.
func (s *Scheduler) Next(id string) (time.Time, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()

	var ce cron.Entry
	if ok {
		ce = s.cron.Entry(e.cronID)
	}
	if ce.Schedule == nil {
		return time.Time{}, tperrors.NewOperationError("scheduler", "Next", ErrScheduleNotFound).WithContext("id=" + id)
	}
	if !ce.Next.IsZero() {
		return ce.Next, nil
	}
	// Not started yet: cron fills Next on Start.
	return ce.Schedule.Next(time.Now().In(s.location)), nil
}

// List returns the registered ids in sorted order.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns a snapshot of every registered schedule sorted by id.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	snapshot := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.Unlock()

	out := make([]Entry, 0, len(snapshot))
	for _, e := range snapshot {
		ce := s.cron.Entry(e.cronID)
		if ce.Schedule == nil {
			continue
		}
		out = append(out, Entry{
			ID:      e.id,
			Spec:    e.spec,
			Next:    ce.Next,
			Prev:    ce.Prev,
			Fired:   e.fired.Load(),
			Skipped: e.skipped.Load(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate reports whether expr would be accepted by Schedule.
func (s *Scheduler) Validate(expr string) error {
	if _, err := s.parser.Parse(expr); err != nil {
		return tperrors.NewValidationError("scheduler", "expr", expr, err.Error())
	}
	return nil
}

// Start begins firing schedules. A stopped scheduler cannot be restarted.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyRunning
	case stateStopped:
		return tperrors.ErrStopped
	}
	s.state = stateRunning
	s.cron.Start()
	s.logger.Info("scheduler started", "scheduler", s.name, "pool", s.pool.Name(), "schedules", len(s.entries))
	return nil
}

// Stop stops firing schedules. The returned channel closes once no
// firing is in progress and, if the scheduler created its own pool, that
// pool has drained. A pool passed in by the caller is left running.
func (s *Scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	if s.state == stateStopped {
		s.mu.Unlock()
		return s.stopped
	}
	s.state = stateStopped
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		<-s.cron.Stop().Done()
		if s.ownPool {
			s.pool.Stop()
		}
		s.logger.Info("scheduler stopped", "scheduler", s.name)
	}()
	return s.stopped
}

// updateGauge must be called with s.mu held.
func (s *Scheduler) updateGauge() {
	if s.metrics != nil {
		s.metrics.SchedulesActive.WithLabelValues(s.name).Set(float64(len(s.entries)))
	}
}
