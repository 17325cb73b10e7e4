package core

import (
	"sync"
	"time"
)

// DraftScheduler debounces draft-snapshot writes: rapid form edits collapse
// into one persist call after the window elapses. Close cancels any pending
// write, so a disposed form never fires a late snapshot.
type DraftScheduler struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	closed  bool
}

// NewDraftScheduler creates a scheduler with the given debounce window.
// A non-positive window falls back to 500ms.
func NewDraftScheduler(window time.Duration) *DraftScheduler {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &DraftScheduler{window: window}
}

// Touch schedules persist to run once the window elapses with no further
// touches. A newer touch replaces the pending function entirely.
func (s *DraftScheduler) Touch(persist func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = persist
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, s.fire)
}

func (s *DraftScheduler) fire() {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Flush runs the pending persist immediately, if any.
func (s *DraftScheduler) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close cancels any pending write and rejects later touches.
func (s *DraftScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = nil
}
