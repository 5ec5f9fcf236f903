//go:build linux

package platform

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/appshell/internal/x11"
)

// LinuxBackend implements Backend on top of an X11 connection.
type LinuxBackend struct {
	conn *x11.Connection

	mu         sync.Mutex
	readyFns   []func(ReadyInfo)
	readyInfo  *ReadyInfo
	layoutSubs map[WindowID]func(string)
	layoutOnce sync.Once
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{
		conn:       conn,
		layoutSubs: make(map[WindowID]func(string)),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// Displays returns all active displays with their usable work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, b.displayFromMonitor(m))
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// DisplayNearestPointer returns the display nearest the current pointer position.
func (b *LinuxBackend) DisplayNearestPointer() (Display, error) {
	mon, err := b.conn.PointerMonitor()
	if err != nil {
		return Display{}, err
	}
	return b.displayFromMonitor(mon), nil
}

// CreateWindow creates a window. The window stays hidden unless opts.Show is
// set; maximization is applied by the caller after creation.
func (b *LinuxBackend) CreateWindow(opts WindowOptions) (WindowID, error) {
	id, err := b.conn.CreateWindow(x11.WindowConfig{
		Title:     opts.Title,
		X:         opts.X,
		Y:         opts.Y,
		Width:     opts.Width,
		Height:    opts.Height,
		MinWidth:  opts.MinWidth,
		MinHeight: opts.MinHeight,
	})
	if err != nil {
		return 0, err
	}
	if opts.Show {
		if err := b.conn.MapWindow(id); err != nil {
			return 0, err
		}
	}
	return WindowID(id), nil
}

// ShowWindow reveals a window.
func (b *LinuxBackend) ShowWindow(id WindowID) error {
	return b.conn.MapWindow(xproto.Window(id))
}

// MaximizeWindow maximizes a window via EWMH.
func (b *LinuxBackend) MaximizeWindow(id WindowID) error {
	return b.conn.SetMaximized(xproto.Window(id), true)
}

// WindowBounds returns a window's bounds in root coordinates.
func (b *LinuxBackend) WindowBounds(id WindowID) (Rect, error) {
	x, y, w, h, err := b.conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

// WindowMaximized reports whether a window is maximized.
func (b *LinuxBackend) WindowMaximized(id WindowID) (bool, error) {
	return b.conn.IsMaximized(xproto.Window(id))
}

// WindowAlive reports whether a window id still names a live window.
func (b *LinuxBackend) WindowAlive(id WindowID) bool {
	return b.conn.WindowExists(xproto.Window(id))
}

// LoadURL records the URL the window's content process should load.
func (b *LinuxBackend) LoadURL(id WindowID, url string) error {
	return b.conn.SetWindowURL(xproto.Window(id), url)
}

// SendToWindow delivers a channel/payload message to a window's content process.
func (b *LinuxBackend) SendToWindow(id WindowID, channel, payload string) error {
	return b.conn.SetWindowMessage(xproto.Window(id), channel, payload)
}

// BindWindowEvents wires per-window event callbacks. X has no paint-ready
// notification for unmapped windows, so ReadyToShow fires once the creation
// requests have completed a server round-trip.
func (b *LinuxBackend) BindWindowEvents(id WindowID, ev WindowEvents) error {
	var (
		boundsMu   sync.Mutex
		lastBounds Rect
		haveBounds bool
	)

	err := b.conn.WatchWindow(xproto.Window(id), x11.WindowHooks{
		Configured: func(x, y, w, h int) {
			next := Rect{X: x, Y: y, Width: w, Height: h}
			boundsMu.Lock()
			prev, had := lastBounds, haveBounds
			lastBounds, haveBounds = next, true
			boundsMu.Unlock()

			resized := !had || prev.Width != next.Width || prev.Height != next.Height
			moved := !had || prev.X != next.X || prev.Y != next.Y
			if resized && ev.Resized != nil {
				ev.Resized(next)
			}
			if moved && ev.Moved != nil {
				ev.Moved(next)
			}
		},
		Destroyed: func() {
			b.mu.Lock()
			delete(b.layoutSubs, id)
			b.mu.Unlock()
			if ev.Closed != nil {
				ev.Closed()
			}
		},
		NewWindowURL: func(url string) {
			if ev.NewWindowRequested != nil {
				ev.NewWindowRequested(url)
			}
		},
	})
	if err != nil {
		return err
	}

	if ev.KeyboardLayoutChanged != nil {
		b.mu.Lock()
		b.layoutSubs[id] = ev.KeyboardLayoutChanged
		b.mu.Unlock()
		b.layoutOnce.Do(func() {
			b.conn.WatchKeyboardMapping(b.dispatchLayoutChange)
		})
	}

	if ev.ReadyToShow != nil {
		go func() {
			if err := b.conn.Sync(); err != nil {
				return
			}
			ev.ReadyToShow()
		}()
	}
	return nil
}

func (b *LinuxBackend) dispatchLayoutChange(kind string) {
	b.mu.Lock()
	subs := make(map[WindowID]func(string), len(b.layoutSubs))
	for id, fn := range b.layoutSubs {
		subs[id] = fn
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(kind)
	}
}

// OnAppReady registers a callback for the native application-ready signal.
// Callbacks registered before EventLoop starts fire once the loop is running;
// late registrations fire immediately with the recorded info.
func (b *LinuxBackend) OnAppReady(fn func(ReadyInfo)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readyInfo != nil {
		info := *b.readyInfo
		go fn(info)
		return
	}
	b.readyFns = append(b.readyFns, fn)
}

// SetMenu publishes the application menu template on the root window for the
// shell to pick up.
func (b *LinuxBackend) SetMenu(m Menu) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode menu: %w", err)
	}
	return b.conn.SetRootProperty(x11.AtomMenu, string(data))
}

// OpenExternal opens a URL in the default external browser.
func (b *LinuxBackend) OpenExternal(url string) error {
	if err := exec.Command("xdg-open", url).Start(); err != nil {
		return fmt.Errorf("failed to open %q externally: %w", url, err)
	}
	return nil
}

// EventLoop fires the application-ready signal and runs the X11 event loop
// (blocking). Ready can be observed by listeners before any start-phase work
// has finished; the lifecycle gate accounts for that.
func (b *LinuxBackend) EventLoop() {
	info := ReadyInfo{
		Backend: "x11",
		Display: b.conn.DisplayName(),
	}
	if displays, err := b.Displays(); err == nil {
		info.Displays = displays
	}

	b.mu.Lock()
	b.readyInfo = &info
	fns := b.readyFns
	b.readyFns = nil
	b.mu.Unlock()

	for _, fn := range fns {
		go fn(info)
	}

	b.conn.EventLoop()
}

func (b *LinuxBackend) displayFromMonitor(m x11.Monitor) Display {
	usable := b.conn.WorkArea(m)
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X: m.X, Y: m.Y, Width: m.Width, Height: m.Height,
		},
		Usable: Rect{
			X: usable.X, Y: usable.Y, Width: usable.Width, Height: usable.Height,
		},
	}
}
