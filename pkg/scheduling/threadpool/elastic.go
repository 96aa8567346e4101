package threadpool

import (
	"sync"
	"sync/atomic"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/scheduling/syncqueue"
)

// ElasticPool keeps a core of workers and grows up to a maximum while
// submissions find no idle worker. Workers above the core retire after
// waiting IdleWait without receiving a task.
type ElasticPool struct {
	base
	queue *syncqueue.Timed[Task]
	core  int
	max   int

	// mu guards slots and nextID. len(slots) is the worker count that
	// growth and retirement decide on.
	mu      sync.Mutex
	slots   []*workerSlot
	nextID  int
	retired atomic.Int64
	wg      sync.WaitGroup
}

// workerSlot registers one elastic worker. exited is set when the worker
// retires and the slot is compacted out of the table under p.mu.
type workerSlot struct {
	id     int
	exited atomic.Bool
}

var _ Pool = (*ElasticPool)(nil)

// NewElastic creates an elastic pool with core workers that may grow to
// max. Zero values select the defaults. It panics if the configuration
// is invalid.
func NewElastic(core, max int) *ElasticPool {
	p, err := NewElasticWithConfig(Config{
		Kind:       KindElastic,
		Workers:    core,
		MaxWorkers: max,
	})
	if err != nil {
		panic(err)
	}
	return p
}

// NewElasticWithConfig creates an elastic pool from config.
// config.Workers is the core size.
func NewElasticWithConfig(config Config) (*ElasticPool, error) {
	config.Kind = KindElastic
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	p := &ElasticPool{
		queue: syncqueue.NewTimed[Task](config.QueueCapacity, config.IdleWait),
		core:  config.Workers,
		max:   config.MaxWorkers,
	}
	p.init(KindElastic, config)

	p.mu.Lock()
	p.start(config.Workers)
	for i := 0; i < p.core; i++ {
		p.spawnLocked()
	}
	p.mu.Unlock()
	return p, nil
}

// spawnLocked starts one worker. p.mu must be held and the pool must be
// running so that no wg.Add races with Stop's wg.Wait.
func (p *ElasticPool) spawnLocked() {
	p.compactLocked()

	slot := &workerSlot{id: p.nextID}
	p.nextID++
	p.slots = append(p.slots, slot)
	p.live.Add(1)
	p.wg.Add(1)
	go p.work(slot)
}

func (p *ElasticPool) compactLocked() {
	n := 0
	for _, s := range p.slots {
		if !s.exited.Load() {
			p.slots[n] = s
			n++
		}
	}
	clear(p.slots[n:])
	p.slots = p.slots[:n]
}

func (p *ElasticPool) work(slot *workerSlot) {
	defer p.wg.Done()
	p.workerStarted(slot.id)
	defer p.workerStopped(slot.id)

	for {
		p.idle.Add(1)
		task, status := p.queue.Dequeue()
		p.idle.Add(-1)

		switch status {
		case syncqueue.StatusOK:
			p.execute(slot.id, task)
		case syncqueue.StatusTimeout:
			if p.retire(slot) {
				return
			}
		case syncqueue.StatusStopped:
			return
		}
	}
}

// retire unregisters slot if that keeps the pool at or above its core
// size.
func (p *ElasticPool) retire(slot *workerSlot) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.slots) <= p.core {
		return false
	}
	slot.exited.Store(true)
	p.compactLocked()
	p.retired.Add(1)
	p.logger.Debug("elastic worker retired", "pool", p.name, "worker", slot.id, "workers", len(p.slots))
	return true
}

// grow spawns a worker when no worker is waiting for a task and the
// pool is below its maximum size.
func (p *ElasticPool) grow() {
	if p.idle.Load() > 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Running() || len(p.slots) >= p.max {
		return
	}
	p.spawnLocked()
	p.logger.Debug("elastic worker spawned", "pool", p.name, "workers", len(p.slots))
}

// Submit queues task, growing the pool if every worker is busy. A task
// that cannot be queued within IdleWait is dropped.
func (p *ElasticPool) Submit(task Task) {
	_ = p.TrySubmit(task)
}

// TrySubmit is Submit returning errors.ErrCapacityExceeded when the
// queue stayed full for IdleWait and errors.ErrStopped when the pool
// stopped first.
func (p *ElasticPool) TrySubmit(task Task) error {
	if err := p.admit(task); err != nil {
		return err
	}
	p.grow()

	switch p.queue.Enqueue(task) {
	case syncqueue.StatusOK:
		return nil
	case syncqueue.StatusTimeout:
		return p.reject(tperrors.ErrCapacityExceeded)
	default:
		return p.reject(tperrors.ErrStopped)
	}
}

// Stop drains the queue and waits for every worker to exit.
func (p *ElasticPool) Stop() {
	p.stop(false)
}

// StopNow discards queued tasks and waits for every worker to exit.
func (p *ElasticPool) StopNow() {
	p.stop(true)
}

func (p *ElasticPool) stop(discard bool) {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.beginStop(discard)
		p.mu.Unlock()

		p.queue.Stop(discard)
		p.wg.Wait()

		p.mu.Lock()
		clear(p.slots)
		p.slots = nil
		p.mu.Unlock()

		p.finishStop()
	})
}

// Size returns the number of workers that have not retired.
func (p *ElasticPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// Core returns the number of workers the pool never shrinks below.
func (p *ElasticPool) Core() int {
	return p.core
}

// Max returns the number of workers the pool never grows beyond.
func (p *ElasticPool) Max() int {
	return p.max
}

// QueueSize returns the number of queued tasks.
func (p *ElasticPool) QueueSize() int {
	return p.queue.Size()
}

// Stats returns a snapshot of the pool counters.
func (p *ElasticPool) Stats() Stats {
	s := p.stats()
	s.Workers = p.Size()
	s.Queued = p.queue.Size()
	s.Retired = p.retired.Load()
	return s
}
