package core

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDraftScheduler_DebouncesTouches(t *testing.T) {
	s := NewDraftScheduler(30 * time.Millisecond)
	defer s.Close()

	var fired int32
	// a burst of edits within the window collapses into one persist
	for i := 0; i < 5; i++ {
		s.Touch(func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("persist ran %d times, want 1", got)
	}
}

func TestDraftScheduler_LatestTouchWins(t *testing.T) {
	s := NewDraftScheduler(20 * time.Millisecond)
	defer s.Close()

	var got atomic.Value
	s.Touch(func() { got.Store("first") })
	s.Touch(func() { got.Store("second") })

	time.Sleep(80 * time.Millisecond)
	if v := got.Load(); v != "second" {
		t.Errorf("persisted %v, want the latest snapshot", v)
	}
}

func TestDraftScheduler_FlushRunsImmediately(t *testing.T) {
	s := NewDraftScheduler(time.Hour)
	defer s.Close()

	var fired int32
	s.Touch(func() { atomic.AddInt32(&fired, 1) })
	s.Flush()

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("persist ran %d times after Flush, want 1", got)
	}

	// flush with nothing pending is a no-op
	s.Flush()
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("second Flush reran persist, count = %d", got)
	}
}

func TestDraftScheduler_CloseCancelsPending(t *testing.T) {
	s := NewDraftScheduler(20 * time.Millisecond)

	var fired int32
	s.Touch(func() { atomic.AddInt32(&fired, 1) })
	s.Close()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("persist ran %d times after Close, want 0", got)
	}

	// touches after Close are rejected
	s.Touch(func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("persist ran %d times on a closed scheduler, want 0", got)
	}
}
