// Package debounce provides a reset-on-call timer for coalescing event bursts.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs a function once after a quiet period. Each call to Debounce
// cancels any pending run and restarts the timer, so a burst of calls produces
// exactly one execution after the last call.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// New creates a debouncer with the given quiet period.
func New(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Debounce schedules fn to run after the quiet period, replacing any
// previously scheduled function.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending scheduled function.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
