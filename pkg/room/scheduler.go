package room

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Scheduler runs at most one deferred task at a time
type Scheduler struct {
	clock quartz.Clock

	mu    sync.Mutex
	timer *quartz.Timer
	when  time.Time
	// seq invalidates a timer that fired while it was being replaced
	seq uint64
}

// NewScheduler returns a scheduler on the clock
func NewScheduler(clock quartz.Clock) *Scheduler {
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Scheduler{clock: clock}
}

// Schedule runs fn after delay, replacing any pending task
// fn runs on its own goroutine
func (s *Scheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stop()
	seq := s.seq
	s.when = s.clock.Now().Add(delay)
	s.timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		if seq != s.seq {
			s.mu.Unlock()
			return
		}

		s.timer = nil
		s.when = time.Time{}
		s.mu.Unlock()

		fn()
	}, "scheduler")
}

// Cancel drops the pending task, if any
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()
}

// Pending returns true if a task is waiting to run
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timer != nil
}

// When returns when the pending task will run
func (s *Scheduler) When() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.when, s.timer != nil
}

// must hold s.mu
func (s *Scheduler) stop() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.when = time.Time{}
}
