package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounce_CoalescesBurst(t *testing.T) {
	var called int32
	var last int32
	d := New(50 * time.Millisecond)

	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Debounce(func() {
			atomic.StoreInt32(&last, v)
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 1 {
		t.Fatalf("expected 1 call for burst, got %d", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Fatalf("expected last value 5, got %d", got)
	}
}

func TestDebounce_Cancel(t *testing.T) {
	var called int32
	d := New(30 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	d.Cancel()

	time.Sleep(80 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 0 {
		t.Fatalf("expected 0 calls after cancel, got %d", got)
	}
}

func TestDebounce_RunsAfterQuietPeriod(t *testing.T) {
	var called int32
	d := New(20 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&called, 1) })

	time.Sleep(80 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}
