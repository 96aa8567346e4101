package syncqueue

import "time"

// signal is a condition variable whose waiters can also give up on a timer.
// Every method must be called with the owning queue's mutex held.
type signal struct {
	waiters []chan struct{}
}

func (s *signal) wait() chan struct{} {
	ch := make(chan struct{})
	s.waiters = append(s.waiters, ch)
	return ch
}

// cancel removes a waiter that stopped waiting before being notified.
func (s *signal) cancel(ch chan struct{}) {
	for i, w := range s.waiters {
		if w == ch {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
}

// notify wakes the longest-waiting waiter, if any.
func (s *signal) notify() {
	if len(s.waiters) == 0 {
		return
	}
	close(s.waiters[0])
	s.waiters[0] = nil
	s.waiters = s.waiters[1:]
}

func (s *signal) broadcast() {
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

// await blocks until ready reports true or timeout elapses, releasing mu while
// asleep. mu is held on entry and on return. A non-positive timeout waits
// forever. The result is the last value of ready, checked under the lock.
func await(mu *mutex, s *signal, timeout time.Duration, ready func() bool) bool {
	if ready() {
		return true
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		wake := s.wait()
		mu.Unlock()

		select {
		case <-wake:
			mu.Lock()
		case <-expired:
			mu.Lock()
			s.cancel(wake)
			return ready()
		}

		if ready() {
			return true
		}
	}
}
