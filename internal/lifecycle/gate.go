package lifecycle

import (
	"context"
	"sync"
)

// StartupGate is a one-shot broadcast synchronization point between the start
// phase and the native ready signal. It settles exactly once — success or the
// first start-hook error — and every waiter, past or future, observes the
// same outcome. It exists because the native ready event and the parallel
// completion of start hooks race each other; neither side may assume the
// other has happened.
type StartupGate struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewStartupGate creates an unsettled gate.
func NewStartupGate() *StartupGate {
	return &StartupGate{done: make(chan struct{})}
}

// Complete settles the gate. Only the first call has any effect.
func (g *StartupGate) Complete(err error) {
	g.once.Do(func() {
		g.err = err
		close(g.done)
	})
}

// Await blocks until the gate settles or the context is cancelled, then
// returns the settled outcome. Calls after settlement return immediately.
func (g *StartupGate) Await(ctx context.Context) error {
	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settled reports whether the gate has settled, without blocking.
func (g *StartupGate) Settled() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Err returns the settled outcome, or nil while unsettled.
func (g *StartupGate) Err() error {
	select {
	case <-g.done:
		return g.err
	default:
		return nil
	}
}
