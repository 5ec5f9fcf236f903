package windowstate

import (
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/appshell/internal/debounce"
	"github.com/1broseidon/appshell/internal/platform"
)

// MaximizedProbe reports whether the bound window is currently maximized.
// It may fail once the window is gone; the saver falls back to the last
// observed value.
type MaximizedProbe func() (bool, error)

// Saver binds one window to the store. Resize and move events schedule a
// debounced save so an interactive drag produces a single write; close saves
// immediately. Save failures are logged and never propagated, so losing
// geometry cannot block shutdown.
type Saver struct {
	store  *Store
	slot   string
	probe  MaximizedProbe
	logger *slog.Logger
	deb    *debounce.Debouncer

	mu        sync.Mutex
	last      WindowState
	have      bool
	maximized bool
}

// NewSaver creates a saver for one window bound to the given slot.
func NewSaver(store *Store, slot string, quiet time.Duration, probe MaximizedProbe, logger *slog.Logger) *Saver {
	if quiet <= 0 {
		quiet = time.Second
	}
	return &Saver{
		store:  store,
		slot:   slot,
		probe:  probe,
		logger: logger,
		deb:    debounce.New(quiet),
	}
}

// Seed records the window's initial geometry without scheduling a save.
func (s *Saver) Seed(st WindowState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maximized = st.IsMaximized
	if st.Width > 0 && st.Height > 0 {
		st.IsMaximized = false
		s.last = st
		s.have = true
	}
}

// ObserveBounds handles a resize or move event: the new geometry is cached
// and a save is scheduled after the quiet window. Each event resets the timer.
func (s *Saver) ObserveBounds(r platform.Rect) {
	maximized := s.currentlyMaximized()

	s.mu.Lock()
	s.maximized = maximized
	// Maximized bounds reflect the full screen, not the user's preferred
	// restored size; only unmaximized geometry updates the cache.
	if !maximized && r.Width > 0 && r.Height > 0 {
		s.last = WindowState{Width: r.Width, Height: r.Height, X: r.X, Y: r.Y}
		s.have = true
	}
	s.mu.Unlock()

	s.deb.Debounce(s.save)
}

// OnClosed cancels any pending debounced save and persists immediately.
func (s *Saver) OnClosed() {
	s.deb.Cancel()
	s.save()
}

func (s *Saver) currentlyMaximized() bool {
	if s.probe == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.maximized
	}
	maximized, err := s.probe()
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.maximized
	}
	return maximized
}

func (s *Saver) save() {
	maximized := s.currentlyMaximized()

	s.mu.Lock()
	last, have := s.last, s.have
	s.mu.Unlock()

	var st WindowState
	switch {
	case maximized:
		// Keep the stored restore geometry; only the flag flips.
		if prev, ok := s.store.Lookup(s.slot); ok {
			st = prev
		} else if have {
			st = last
		} else {
			s.logger.Warn("skipping window state save: maximized with no restore geometry", "slot", s.slot)
			return
		}
		st.IsMaximized = true
	case have:
		st = last
		st.IsMaximized = false
	default:
		return
	}

	if err := s.store.Set(s.slot, st); err != nil {
		s.logger.Warn("failed to save window state", "slot", s.slot, "error", err)
	}
}
