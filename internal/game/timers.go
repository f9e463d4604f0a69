// internal/game/timers.go
package game

import (
	"sync"
	"time"
)

// TimerSupervisor owns at most one outstanding turn timer per room. Arming a
// room's timer cancels any prior one, so callers can cancel-then-arm
// idempotently on every mutation.
type TimerSupervisor struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerSupervisor creates an empty supervisor.
func NewTimerSupervisor() *TimerSupervisor {
	return &TimerSupervisor{
		timers: make(map[string]*time.Timer),
	}
}

// Arm schedules onExpire to run after d, replacing any timer already armed
// for the room. onExpire runs on the timer goroutine; it is responsible for
// re-validating that the turn it was armed for is still current.
func (s *TimerSupervisor) Arm(roomID string, d time.Duration, onExpire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[roomID]; ok {
		t.Stop()
	}
	s.timers[roomID] = time.AfterFunc(d, onExpire)
}

// Cancel stops and forgets the room's outstanding timer, if any.
func (s *TimerSupervisor) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[roomID]; ok {
		t.Stop()
		delete(s.timers, roomID)
	}
}
