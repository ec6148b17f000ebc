package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(ctx context.Context, force bool) int {
	r.calls.Add(1)
	return 1
}

func TestStartDisabledWithZeroInterval(t *testing.T) {
	r := &countingRefresher{}
	s := New(0, time.Second, r, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if r.calls.Load() != 0 {
		t.Fatalf("expected no refresh, got %d", r.calls.Load())
	}
}

func TestRunCallsRefresher(t *testing.T) {
	r := &countingRefresher{}
	s := New(time.Hour, time.Second, r, nil)

	s.run()

	if r.calls.Load() != 1 {
		t.Fatalf("expected 1 refresh, got %d", r.calls.Load())
	}
}

func TestStartWaitsForFirstInterval(t *testing.T) {
	r := &countingRefresher{}
	s := New(time.Hour, time.Second, r, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if r.calls.Load() != 0 {
		t.Fatalf("expected refresh to wait for the schedule, got %d calls", r.calls.Load())
	}
}
