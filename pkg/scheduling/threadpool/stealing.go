package threadpool

import (
	"sync"
	"sync/atomic"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/scheduling/syncqueue"
)

// StealingPool pins each worker to its own bucket. Submissions are
// spread round-robin and an idle worker takes the oldest task of
// another bucket before waiting.
type StealingPool struct {
	base
	queue    *syncqueue.Stealing[Task]
	workers  int
	next     atomic.Uint64
	executed []atomic.Int64
	wg       sync.WaitGroup
}

var _ Pool = (*StealingPool)(nil)

// NewStealing creates a work-stealing pool. Zero selects the default
// worker count. It panics if the configuration is invalid.
func NewStealing(workers int) *StealingPool {
	p, err := NewStealingWithConfig(Config{
		Kind:    KindWorkStealing,
		Workers: workers,
	})
	if err != nil {
		panic(err)
	}
	return p
}

// NewStealingWithConfig creates a work-stealing pool from config.
// config.QueueCapacity bounds each worker's bucket.
func NewStealingWithConfig(config Config) (*StealingPool, error) {
	config.Kind = KindWorkStealing
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	p := &StealingPool{
		queue:    syncqueue.NewStealing[Task](config.Workers, config.QueueCapacity, config.IdleWait),
		workers:  config.Workers,
		executed: make([]atomic.Int64, config.Workers),
	}
	p.init(KindWorkStealing, config)

	p.live.Store(int64(config.Workers))
	p.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.work(i)
	}
	p.start(config.Workers)
	return p, nil
}

func (p *StealingPool) work(id int) {
	defer p.wg.Done()
	p.workerStarted(id)
	defer p.workerStopped(id)

	for {
		p.idle.Add(1)
		task, status := p.queue.Dequeue(id)
		p.idle.Add(-1)

		switch status {
		case syncqueue.StatusOK:
			p.execute(id, task)
			p.executed[id].Add(1)
		case syncqueue.StatusStopped:
			return
		}
	}
}

// Submit places task in the next bucket in round-robin order. A task
// that cannot be queued within IdleWait is dropped.
func (p *StealingPool) Submit(task Task) {
	_ = p.TrySubmit(task)
}

// TrySubmit is Submit returning errors.ErrCapacityExceeded when the
// chosen bucket stayed full for IdleWait and errors.ErrStopped when the
// pool stopped first.
func (p *StealingPool) TrySubmit(task Task) error {
	if err := p.admit(task); err != nil {
		return err
	}
	bucket := int((p.next.Add(1) - 1) % uint64(p.workers))

	switch p.queue.Enqueue(task, bucket) {
	case syncqueue.StatusOK:
		return nil
	case syncqueue.StatusTimeout:
		return p.reject(tperrors.ErrCapacityExceeded)
	default:
		return p.reject(tperrors.ErrStopped)
	}
}

// Stop drains every bucket and waits for every worker to exit.
func (p *StealingPool) Stop() {
	p.stop(false)
}

// StopNow discards queued tasks and waits for every worker to exit.
func (p *StealingPool) StopNow() {
	p.stop(true)
}

func (p *StealingPool) stop(discard bool) {
	p.stopOnce.Do(func() {
		p.beginStop(discard)
		p.queue.Stop(discard)
		p.wg.Wait()
		p.finishStop()
	})
}

// QueueSize returns the number of tasks queued across all buckets.
func (p *StealingPool) QueueSize() int {
	return p.queue.Size()
}

// Steals returns how many tasks workers took from another bucket.
func (p *StealingPool) Steals() uint64 {
	return p.queue.Steals()
}

// Executed returns the number of tasks each worker has run, indexed by
// worker ID. Panicked tasks are included.
func (p *StealingPool) Executed() []int64 {
	out := make([]int64, len(p.executed))
	for i := range p.executed {
		out[i] = p.executed[i].Load()
	}
	return out
}

// Stats returns a snapshot of the pool counters.
func (p *StealingPool) Stats() Stats {
	s := p.stats()
	s.Queued = p.queue.Size()
	s.Stolen = int64(p.queue.Steals())
	return s
}
