package threadpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
)

// Handle is a one-shot result cell for a task submitted with
// SubmitWithResult or Call. It is written once and may be read any
// number of times.
type Handle[T any] struct {
	done  chan struct{}
	once  sync.Once
	valid bool
	value T
	err   error
}

func newHandle[T any](valid bool) *Handle[T] {
	return &Handle[T]{done: make(chan struct{}), valid: valid}
}

func (h *Handle[T]) resolve(value T, err error) {
	h.once.Do(func() {
		h.value, h.err = value, err
		close(h.done)
	})
}

// Valid reports whether the task was accepted. An invalid handle never
// resolves.
func (h *Handle[T]) Valid() bool {
	return h.valid
}

// Done returns a channel closed once the result is available.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Ready reports whether the result is available without blocking.
func (h *Handle[T]) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Get blocks until the result is available. On an invalid handle it
// blocks forever; use Wait to bound the wait.
func (h *Handle[T]) Get() (T, error) {
	<-h.done
	return h.value, h.err
}

// Wait blocks until the result is available or ctx is done. A passed
// deadline is reported as errors.ErrTimeout, still matching
// context.DeadlineExceeded.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", tperrors.ErrTimeout, err)
		}
		return zero, err
	}
}

// SubmitWithResult submits fn to p and returns a handle to its result.
// A panic in fn resolves the handle with an error wrapping
// errors.ErrTaskPanicked and is still reported by the pool. If p does
// not accept the task the handle is invalid. A task discarded by StopNow
// leaves its handle unresolved.
func SubmitWithResult[T any](p Pool, fn func() (T, error)) *Handle[T] {
	h := newHandle[T](true)

	task := TaskFunc(func() {
		finished := false
		defer func() {
			if finished {
				return
			}
			r := recover()
			var zero T
			h.resolve(zero, panicError(r))
			if r != nil {
				panic(r)
			}
		}()

		value, err := fn()
		finished = true
		h.resolve(value, err)
	})

	if err := p.TrySubmit(task); err != nil {
		return newHandle[T](false)
	}
	return h
}

// Call submits fn to p and returns a handle to its return value.
func Call[T any](p Pool, fn func() T) *Handle[T] {
	return SubmitWithResult(p, func() (T, error) {
		return fn(), nil
	})
}
