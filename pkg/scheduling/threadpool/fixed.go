package threadpool

import (
	"sync"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/scheduling/syncqueue"
)

// FixedPool runs tasks on a constant number of workers fed by one
// bounded FIFO queue.
type FixedPool struct {
	base
	queue *syncqueue.Bounded[Task]
	wg    sync.WaitGroup
}

var _ Pool = (*FixedPool)(nil)

// NewFixed creates a fixed pool. Zero values select the defaults.
// It panics if the configuration is invalid.
func NewFixed(workers, capacity int) *FixedPool {
	p, err := NewFixedWithConfig(Config{
		Kind:          KindFixed,
		Workers:       workers,
		QueueCapacity: capacity,
	})
	if err != nil {
		panic(err)
	}
	return p
}

// NewFixedWithConfig creates a fixed pool from config.
func NewFixedWithConfig(config Config) (*FixedPool, error) {
	config.Kind = KindFixed
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	p := &FixedPool{queue: syncqueue.NewBounded[Task](config.QueueCapacity)}
	p.init(KindFixed, config)

	p.live.Store(int64(config.Workers))
	p.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.work(i)
	}
	p.start(config.Workers)
	return p, nil
}

func (p *FixedPool) work(id int) {
	defer p.wg.Done()
	p.workerStarted(id)
	defer p.workerStopped(id)

	for {
		p.idle.Add(1)
		task, ok := p.queue.Dequeue()
		p.idle.Add(-1)
		if !ok {
			return
		}
		p.execute(id, task)
	}
}

// Submit queues task, blocking while the queue is full.
func (p *FixedPool) Submit(task Task) {
	_ = p.TrySubmit(task)
}

// TrySubmit queues task, blocking while the queue is full. It returns
// an error if the pool is not running or stops before task is queued.
func (p *FixedPool) TrySubmit(task Task) error {
	if err := p.admit(task); err != nil {
		return err
	}
	if !p.queue.Put(task) {
		return p.reject(tperrors.ErrStopped)
	}
	return nil
}

// Stop drains the queue and waits for every worker to exit.
func (p *FixedPool) Stop() {
	p.stop(false)
}

// StopNow discards queued tasks and waits for every worker to exit.
func (p *FixedPool) StopNow() {
	p.stop(true)
}

func (p *FixedPool) stop(discard bool) {
	p.stopOnce.Do(func() {
		p.beginStop(discard)
		p.queue.Stop(discard)
		p.wg.Wait()
		p.finishStop()
	})
}

// QueueSize returns the number of queued tasks.
func (p *FixedPool) QueueSize() int {
	return p.queue.Size()
}

// Stats returns a snapshot of the pool counters.
func (p *FixedPool) Stats() Stats {
	s := p.stats()
	s.Queued = p.queue.Size()
	return s
}
