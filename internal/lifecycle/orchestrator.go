package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/appshell/internal/platform"
)

// ReadySetup is invoked during the ready phase, after the gate settles and
// before contributions are notified. The orchestrator's caller binds its IPC
// routes and installs the application menu here.
type ReadySetup func(info platform.ReadyInfo) error

// Orchestrator drives the start → ready → quit sequence: it fans lifecycle
// hooks out to all registered contributions and synchronizes the ready phase
// against start-phase completion through a StartupGate.
type Orchestrator struct {
	registry *Registry
	gate     *StartupGate
	setup    ReadySetup
	logger   *slog.Logger

	startOnce sync.Once
	quitOnce  sync.Once
}

// NewOrchestrator creates an orchestrator. setup may be nil.
func NewOrchestrator(registry *Registry, setup ReadySetup, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		gate:     NewStartupGate(),
		setup:    setup,
		logger:   logger,
	}
}

// Gate exposes the startup gate so downstream consumers can inspect the
// start-phase outcome.
func (o *Orchestrator) Gate() *StartupGate {
	return o.gate
}

// Start begins the lifecycle. The native ready listener is registered
// synchronously, before any hook runs, so a ready signal can never be missed.
// Start hooks are then initiated in registration order but run in parallel;
// one slow contribution must not hold up the others. The gate settles with
// success only when every hook finishes cleanly, otherwise with the error of
// the earliest-registered failing hook. Start may be called once; later calls
// are no-ops.
func (o *Orchestrator) Start(ctx context.Context, host Host) {
	o.startOnce.Do(func() {
		host.OnAppReady(func(info platform.ReadyInfo) {
			o.ready(ctx, info)
		})

		contributions := o.registry.All()
		errs := make([]error, len(contributions))
		var wg sync.WaitGroup
		for i, c := range contributions {
			if c.OnStart == nil {
				continue
			}
			wg.Add(1)
			go func(i int, c Contribution) {
				defer wg.Done()
				if err := c.OnStart(ctx, host); err != nil {
					errs[i] = fmt.Errorf("contribution %q start failed: %w", c.Name, err)
				}
			}(i, c)
		}

		go func() {
			wg.Wait()
			o.gate.Complete(firstError(errs))
		}()
	})
}

// ready runs the ready phase: await the gate, perform the host setup (IPC
// routes, menu), then notify contributions. The setup runs even when the
// start phase failed — a broken contribution must not silently disable the
// host's own surfaces — but the contribution fan-out is skipped on failure.
// Ready hooks run in parallel; every failure is logged and none blocks the
// others.
func (o *Orchestrator) ready(ctx context.Context, info platform.ReadyInfo) {
	gateErr := o.gate.Await(ctx)
	if ctx.Err() != nil {
		return
	}

	if o.setup != nil {
		if err := o.setup(info); err != nil {
			o.logger.Error("ready-phase setup failed", "error", err)
		}
	}

	if gateErr != nil {
		o.logger.Error("start phase failed; skipping ready notifications", "error", gateErr)
		return
	}

	contributions := o.registry.All()
	var wg sync.WaitGroup
	for _, c := range contributions {
		if c.OnReady == nil {
			continue
		}
		wg.Add(1)
		go func(c Contribution) {
			defer wg.Done()
			if err := c.OnReady(ctx, info); err != nil {
				o.logger.Error("contribution ready hook failed", "contribution", c.Name, "error", err)
			}
		}(c)
	}
	wg.Wait()
}

// Quit notifies every contribution that the host is shutting down. Hooks run
// in registration order; failures are logged and never abort the fan-out.
// Quit runs at most once.
func (o *Orchestrator) Quit(ctx context.Context) {
	o.quitOnce.Do(func() {
		for _, c := range o.registry.All() {
			if c.OnQuit == nil {
				continue
			}
			if err := c.OnQuit(ctx); err != nil {
				o.logger.Warn("contribution quit hook failed", "contribution", c.Name, "error", err)
			}
		}
	})
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
