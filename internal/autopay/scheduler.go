package autopay

import (
	"sync"
	"time"
)

// Scheduler keeps one live timer per order. Arm replaces any existing timer
// for the order, so rearming is last-write-wins. Timers live in process
// memory only; the periodic sweep covers orders whose timers were lost to a
// restart.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// Arm schedules fire to run once after delay and returns the due time.
func (s *Scheduler) Arm(orderID string, delay time.Duration, fire func()) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[orderID]; ok {
		old.Stop()
	}
	s.timers[orderID] = time.AfterFunc(delay, func() {
		s.forget(orderID)
		fire()
	})
	return time.Now().Add(delay)
}

// Cancel stops the order's timer if one is live. Cancelling after the timer
// fired is a no-op.
func (s *Scheduler) Cancel(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[orderID]; ok {
		t.Stop()
		delete(s.timers, orderID)
	}
}

// Due reports whether a timer is currently armed for the order.
func (s *Scheduler) Due(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[orderID]
	return ok
}

// Stop cancels every live timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) forget(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, orderID)
}
