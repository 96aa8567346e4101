// Package stress drives a thread pool through the CPU, IO and mixed
// workloads used by the example programs.
package stress

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/taskpool/pkg/scheduling/threadpool"
)

// Config sizes the three phases.
type Config struct {
	CPUTasks   int
	CPURange   int
	IOTasks    int
	MaxSleep   time.Duration
	MixedTasks int

	// Settle is how long Run waits after the mixed phase for
	// fire-and-forget tasks to finish and idle workers to retire.
	Settle time.Duration
}

// DefaultConfig returns the workload sizes of the stress programs.
func DefaultConfig() Config {
	return Config{
		CPUTasks:   600,
		CPURange:   150,
		IOTasks:    400,
		MaxSleep:   20 * time.Millisecond,
		MixedTasks: 500,
		Settle:     2 * time.Second,
	}
}

// Report summarizes one phase.
type Report struct {
	Phase   string
	Tasks   int
	Dropped int
	Result  int64
	Elapsed time.Duration
	Stats   threadpool.Stats
}

func (r Report) String() string {
	return fmt.Sprintf("%-5s tasks=%d dropped=%d result=%d elapsed=%v workers=%d queued=%d",
		r.Phase, r.Tasks, r.Dropped, r.Result, r.Elapsed.Round(time.Millisecond), r.Stats.Workers, r.Stats.Queued)
}

// CountPrimes returns the number of primes in [start, end].
func CountPrimes(start, end int) int {
	count := 0
	for i := start; i <= end; i++ {
		if i < 2 {
			continue
		}
		prime := true
		for j := 2; j*j <= i; j++ {
			if i%j == 0 {
				prime = false
				break
			}
		}
		if prime {
			count++
		}
	}
	return count
}

// Run executes the CPU, IO and mixed phases against pool in order.
func Run(ctx context.Context, pool threadpool.Pool, cfg Config) ([]Report, error) {
	phases := []func(context.Context, threadpool.Pool, Config) (Report, error){cpuPhase, ioPhase, mixedPhase}

	reports := make([]Report, 0, len(phases))
	for _, phase := range phases {
		r, err := phase(ctx, pool, cfg)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// await waits for every valid handle and sums the values. Invalid
// handles are counted as dropped.
func await[T any](ctx context.Context, handles []*threadpool.Handle[T], value func(T) int64) (sum int64, dropped int, err error) {
	var total atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		if !h.Valid() {
			dropped++
			continue
		}
		g.Go(func() error {
			v, err := h.Wait(ctx)
			if err != nil {
				return err
			}
			total.Add(value(v))
			return nil
		})
	}
	err = g.Wait()
	return total.Load(), dropped, err
}

func cpuPhase(ctx context.Context, pool threadpool.Pool, cfg Config) (Report, error) {
	start := time.Now()
	handles := make([]*threadpool.Handle[int], 0, cfg.CPUTasks)
	for i := 0; i < cfg.CPUTasks; i++ {
		lo, hi := i*cfg.CPURange, (i+1)*cfg.CPURange-1
		handles = append(handles, threadpool.Call(pool, func() int { return CountPrimes(lo, hi) }))
	}

	sum, dropped, err := await(ctx, handles, func(n int) int64 { return int64(n) })
	return Report{
		Phase:   "cpu",
		Tasks:   cfg.CPUTasks,
		Dropped: dropped,
		Result:  sum,
		Elapsed: time.Since(start),
		Stats:   pool.Stats(),
	}, err
}

func ioPhase(ctx context.Context, pool threadpool.Pool, cfg Config) (Report, error) {
	start := time.Now()
	steps := int(cfg.MaxSleep / time.Millisecond)
	if steps < 1 {
		steps = 1
	}

	handles := make([]*threadpool.Handle[time.Duration], 0, cfg.IOTasks)
	for i := 0; i < cfg.IOTasks; i++ {
		d := time.Duration(i%steps+1) * time.Millisecond
		handles = append(handles, threadpool.Call(pool, func() time.Duration {
			time.Sleep(d)
			return d
		}))
	}

	slept, dropped, err := await(ctx, handles, func(d time.Duration) int64 { return int64(d / time.Millisecond) })
	return Report{
		Phase:   "io",
		Tasks:   cfg.IOTasks,
		Dropped: dropped,
		Result:  slept,
		Elapsed: time.Since(start),
		Stats:   pool.Stats(),
	}, err
}

func mixedPhase(ctx context.Context, pool threadpool.Pool, cfg Config) (Report, error) {
	start := time.Now()
	var done atomic.Int64
	dropped := 0

	for i := 0; i < cfg.MixedTasks; i++ {
		n := 300
		if i%4 == 0 {
			n = 8000
		}
		err := pool.TrySubmit(threadpool.TaskFunc(func() {
			var s int
			for j := 0; j < n; j++ {
				s += j
			}
			_ = s
			done.Add(1)
		}))
		if err != nil {
			dropped++
		}
	}

	select {
	case <-time.After(cfg.Settle):
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}

	return Report{
		Phase:   "mixed",
		Tasks:   cfg.MixedTasks,
		Dropped: dropped,
		Result:  done.Load(),
		Elapsed: time.Since(start),
		Stats:   pool.Stats(),
	}, nil
}
