// Package lifecycle coordinates the host startup sequence: an asynchronous
// set of pluggable contributions synchronized against the single native
// ready signal.
package lifecycle

import (
	"context"
	"sync"

	"github.com/1broseidon/appshell/internal/platform"
)

// Host is the handle passed to contribution start hooks. The concrete value
// is the platform backend; contributions needing more than ready registration
// may type-assert.
type Host interface {
	OnAppReady(fn func(platform.ReadyInfo))
}

// Contribution is a pluggable lifecycle participant. Every hook is optional;
// a zero Contribution is a valid no-op participant.
type Contribution struct {
	Name    string
	OnStart func(ctx context.Context, host Host) error
	OnReady func(ctx context.Context, info platform.ReadyInfo) error
	OnQuit  func(ctx context.Context) error
}

// Registry is an ordered collection of contributions. Hooks are initiated in
// registration order; completions may interleave.
type Registry struct {
	mu            sync.Mutex
	contributions []Contribution
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a contribution.
func (r *Registry) Register(c Contribution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributions = append(r.contributions, c)
}

// All returns the contributions in registration order.
func (r *Registry) All() []Contribution {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Contribution, len(r.contributions))
	copy(out, r.contributions)
	return out
}

// Len returns the number of registered contributions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contributions)
}
