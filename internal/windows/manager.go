// Package windows tracks the host's application windows: creation with
// placement and persisted state, event wiring, and liveness bookkeeping.
package windows

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/appshell/internal/placement"
	"github.com/1broseidon/appshell/internal/platform"
	"github.com/1broseidon/appshell/internal/windowstate"
)

// Options configures the manager.
type Options struct {
	Title      string
	DefaultURL string
	// SaveQuiet is the debounce window for geometry saves.
	SaveQuiet time.Duration
}

// Info describes one tracked window.
type Info struct {
	ID   platform.WindowID `json:"id"`
	Slot string            `json:"slot,omitempty"`
	URL  string            `json:"url,omitempty"`
}

type tracked struct {
	info  Info
	saver *windowstate.Saver
}

// Manager owns all host windows. The first window binds to the persisted
// state slot; further windows are placed fresh and not persisted.
type Manager struct {
	backend platform.Backend
	store   *windowstate.Store
	policy  placement.Policy
	opts    Options
	logger  *slog.Logger

	mu      sync.Mutex
	windows map[platform.WindowID]*tracked
	bound   bool // the persisted slot is already claimed by a live window
}

// NewManager creates a window manager.
func NewManager(backend platform.Backend, store *windowstate.Store, policy placement.Policy, opts Options, logger *slog.Logger) *Manager {
	return &Manager{
		backend: backend,
		store:   store,
		policy:  policy,
		opts:    opts,
		logger:  logger,
		windows: make(map[platform.WindowID]*tracked),
	}
}

// CreateWindow creates, wires, and loads one window. An empty url falls back
// to the configured default URL. The window starts hidden and is shown when
// the backend reports it ready.
func (m *Manager) CreateWindow(url string) (platform.WindowID, error) {
	m.mu.Lock()
	if url == "" {
		url = m.opts.DefaultURL
	}
	policy := m.policy
	quiet := m.opts.SaveQuiet
	main := !m.bound
	m.mu.Unlock()

	var persisted *windowstate.WindowState
	slot := ""
	if main {
		slot = windowstate.DefaultSlot
		if st, ok := m.store.Lookup(slot); ok {
			persisted = &st
		}
	}

	display := m.pickDisplay()
	opts := policy.Options(persisted, display.Usable)

	id, err := m.backend.CreateWindow(opts)
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}

	if opts.Maximized {
		if err := m.backend.MaximizeWindow(id); err != nil {
			m.logger.Warn("failed to restore maximized state", "window_id", id, "error", err)
		}
	}

	var saver *windowstate.Saver
	if slot != "" {
		probe := func() (bool, error) { return m.backend.WindowMaximized(id) }
		saver = windowstate.NewSaver(m.store, slot, quiet, probe, m.logger)
		saver.Seed(windowstate.WindowState{
			Width:       opts.Width,
			Height:      opts.Height,
			X:           opts.X,
			Y:           opts.Y,
			IsMaximized: opts.Maximized,
		})
	}

	m.mu.Lock()
	m.windows[id] = &tracked{info: Info{ID: id, Slot: slot, URL: url}, saver: saver}
	if slot != "" {
		m.bound = true
	}
	m.mu.Unlock()

	ev := platform.WindowEvents{
		ReadyToShow: func() {
			if err := m.backend.ShowWindow(id); err != nil {
				m.logger.Warn("failed to show window", "window_id", id, "error", err)
			}
		},
		Closed: func() { m.handleClosed(id) },
		// Content never gets a second host window this way; the request is
		// cancelled and the URL goes to the default browser.
		NewWindowRequested: func(u string) {
			if err := m.OpenExternal(u); err != nil {
				m.logger.Error("failed to open requested url externally", "url", u, "error", err)
			}
		},
		KeyboardLayoutChanged: func(layout string) {
			if !m.backend.WindowAlive(id) {
				return
			}
			if err := m.backend.SendToWindow(id, "keyboard-layout-changed", layout); err != nil {
				m.logger.Debug("failed to forward keyboard layout", "window_id", id, "error", err)
			}
		},
	}
	if saver != nil {
		ev.Resized = saver.ObserveBounds
		ev.Moved = saver.ObserveBounds
	}
	if err := m.backend.BindWindowEvents(id, ev); err != nil {
		m.logger.Warn("failed to bind window events", "window_id", id, "error", err)
	}

	if url != "" {
		if err := m.backend.LoadURL(id, url); err != nil {
			m.logger.Error("failed to load url", "window_id", id, "url", url, "error", err)
		}
	}

	m.logger.Info("window created",
		"window_id", id,
		"slot", slot,
		"url", url,
		"geometry", fmt.Sprintf("%dx%d+%d+%d", opts.Width, opts.Height, opts.X, opts.Y),
		"maximized", opts.Maximized)
	return id, nil
}

// UpdateOptions applies a new configuration. Existing windows keep their
// title and binding; the change affects windows created afterwards.
func (m *Manager) UpdateOptions(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
	m.policy.Title = opts.Title
}

// OpenExternal hands a URL to the desktop environment. Empty URLs are
// ignored.
func (m *Manager) OpenExternal(url string) error {
	if url == "" {
		return nil
	}
	return m.backend.OpenExternal(url)
}

// Send delivers a message to one tracked window.
func (m *Manager) Send(id platform.WindowID, channel, payload string) error {
	m.mu.Lock()
	_, ok := m.windows[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("window %d not tracked", id)
	}
	return m.backend.SendToWindow(id, channel, payload)
}

// Broadcast delivers a message to every tracked window. Per-window failures
// are logged, not returned.
func (m *Manager) Broadcast(channel, payload string) {
	for _, info := range m.Windows() {
		if err := m.backend.SendToWindow(info.ID, channel, payload); err != nil {
			m.logger.Warn("broadcast failed", "window_id", info.ID, "channel", channel, "error", err)
		}
	}
}

// Windows returns the tracked windows ordered by ID.
func (m *Manager) Windows() []Info {
	m.mu.Lock()
	out := make([]Info, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w.info)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of tracked windows.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Sweep drops tracked windows whose native window no longer exists. The
// reconciler calls this to catch destroy events lost while the daemon was
// busy. Returns the number of windows dropped.
func (m *Manager) Sweep() int {
	var stale []platform.WindowID
	for _, info := range m.Windows() {
		if !m.backend.WindowAlive(info.ID) {
			stale = append(stale, info.ID)
		}
	}
	for _, id := range stale {
		m.logger.Info("dropping dead window", "window_id", id)
		m.handleClosed(id)
	}
	return len(stale)
}

func (m *Manager) handleClosed(id platform.WindowID) {
	m.mu.Lock()
	w, ok := m.windows[id]
	if ok {
		delete(m.windows, id)
		if w.info.Slot != "" {
			m.bound = false
		}
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	if w.saver != nil {
		// Persist the last known geometry right away; the debounce timer may
		// still be pending and the native window is already gone.
		w.saver.OnClosed()
	}
	m.logger.Info("window closed", "window_id", id, "slot", w.info.Slot)
}

func (m *Manager) pickDisplay() platform.Display {
	d, err := m.backend.DisplayNearestPointer()
	if err == nil {
		return d
	}
	m.logger.Debug("pointer display lookup failed", "error", err)
	if ds, err := m.backend.Displays(); err == nil && len(ds) > 0 {
		return ds[0]
	}
	// No display information at all; fall back to a common work area so the
	// window still comes up somewhere visible.
	fallback := platform.Rect{Width: 1920, Height: 1080}
	return platform.Display{Name: "fallback", Bounds: fallback, Usable: fallback}
}
