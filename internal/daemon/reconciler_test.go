package daemon

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSweeper struct {
	calls   int32
	dropped int
	panics  bool
}

func (s *fakeSweeper) Sweep() int {
	atomic.AddInt32(&s.calls, 1)
	if s.panics {
		panic("sweep exploded")
	}
	return s.dropped
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconciler_RunsPeriodically(t *testing.T) {
	sweeper := &fakeSweeper{}
	r := NewReconciler(ReconcilerConfig{Interval: 10 * time.Millisecond, Logger: testLogger()}, sweeper)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&sweeper.calls) < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", atomic.LoadInt32(&sweeper.calls))
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop on cancel")
	}
}

func TestReconciler_RecoverFromPanic(t *testing.T) {
	sweeper := &fakeSweeper{panics: true}
	r := NewReconciler(ReconcilerConfig{Interval: time.Hour, Logger: testLogger()}, sweeper)

	// Must not crash the test binary.
	r.ReconcileNow()
	r.ReconcileNow()

	if got := atomic.LoadInt32(&sweeper.calls); got != 2 {
		t.Fatalf("sweep called %d times, want 2", got)
	}
}

func TestReconciler_DefaultInterval(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{Logger: testLogger()}, &fakeSweeper{})
	if r.interval != 10*time.Second {
		t.Fatalf("default interval = %v", r.interval)
	}
}
