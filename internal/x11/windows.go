package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Atoms used for host <-> window-content communication.
const (
	AtomNewWindow    = "_APPSHELL_NEW_WINDOW"
	AtomNewWindowURL = "_APPSHELL_NEW_WINDOW_URL"
	AtomMessage      = "_APPSHELL_MESSAGE"
	AtomURL          = "_APPSHELL_URL"
	AtomMenu         = "_APPSHELL_MENU"
)

const (
	stateRemove = 0
	stateAdd    = 1
)

// WindowConfig describes a new top-level window. The window is created
// unmapped; call MapWindow to reveal it.
type WindowConfig struct {
	Title     string
	X         int
	Y         int
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
}

// CreateWindow creates an unmapped top-level window with the given geometry,
// title and minimum size hints.
func (c *Connection) CreateWindow(cfg WindowConfig) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	err = win.CreateChecked(c.Root, cfg.X, cfg.Y, cfg.Width, cfg.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0xffffff, xproto.EventMaskStructureNotify)
	if err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}

	if cfg.Title != "" {
		if err := ewmh.WmNameSet(c.XUtil, win.Id, cfg.Title); err != nil {
			// Title is cosmetic; the window is still usable.
			_ = icccm.WmNameSet(c.XUtil, win.Id, cfg.Title)
		}
	}

	if cfg.MinWidth > 0 || cfg.MinHeight > 0 {
		hints := icccm.NormalHints{
			Flags:     icccm.SizeHintPMinSize,
			MinWidth:  uint(cfg.MinWidth),
			MinHeight: uint(cfg.MinHeight),
		}
		if err := icccm.WmNormalHintsSet(c.XUtil, win.Id, &hints); err != nil {
			return 0, fmt.Errorf("failed to set size hints: %w", err)
		}
	}

	return win.Id, nil
}

// MapWindow reveals a window.
func (c *Connection) MapWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// SetMaximized adds or removes both EWMH maximized states.
func (c *Connection) SetMaximized(windowID xproto.Window, on bool) error {
	action := stateAdd
	if !on {
		action = stateRemove
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
		return err
	}
	return ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_MAXIMIZED_VERT")
}

// IsMaximized reports whether the window carries either EWMH maximized state.
func (c *Connection) IsMaximized(windowID xproto.Window) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, err
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			return true, nil
		}
	}
	return false, nil
}

// WindowGeometry returns a window's bounds in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (x, y, w, h int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// WindowExists reports whether a window id still names a live window.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	return err == nil
}

// SetWindowMessage delivers a channel/payload pair to a window's content
// process: the payload lands in a window property and a ClientMessage pings
// the window to read it.
func (c *Connection) SetWindowMessage(windowID xproto.Window, channel, payload string) error {
	data := append([]byte(channel), 0)
	data = append(data, []byte(payload)...)
	if err := xprop.ChangeProp(c.XUtil, windowID, 8, AtomMessage, "UTF8_STRING", data); err != nil {
		return fmt.Errorf("failed to set message property: %w", err)
	}

	atom, err := xprop.Atm(c.XUtil, AtomMessage)
	if err != nil {
		return fmt.Errorf("failed to intern message atom: %w", err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, windowID,
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// SetWindowURL records the URL a window's content process should load.
func (c *Connection) SetWindowURL(windowID xproto.Window, url string) error {
	return xprop.ChangeProp(c.XUtil, windowID, 8, AtomURL, "UTF8_STRING", []byte(url))
}

// SetRootProperty publishes a named UTF-8 property on the root window.
func (c *Connection) SetRootProperty(name, data string) error {
	return xprop.ChangeProp(c.XUtil, c.Root, 8, name, "UTF8_STRING", []byte(data))
}

// WindowHooks are callbacks for events on a watched window. Nil hooks are
// skipped. All hooks run on the event loop goroutine.
type WindowHooks struct {
	Configured func(x, y, w, h int)
	Destroyed  func()
	Mapped     func()
	// NewWindowURL fires when the window's content requests a new native
	// window via a _APPSHELL_NEW_WINDOW ClientMessage; the target URL is
	// read from the window's _APPSHELL_NEW_WINDOW_URL property.
	NewWindowURL func(url string)
}

// WatchWindow subscribes to structure and client-message events on a window.
func (c *Connection) WatchWindow(windowID xproto.Window, hooks WindowHooks) error {
	win := xwindow.New(c.XUtil, windowID)
	if err := win.Listen(xproto.EventMaskStructureNotify); err != nil {
		return fmt.Errorf("failed to listen on window: %w", err)
	}

	newWindowAtom, err := xprop.Atm(c.XUtil, AtomNewWindow)
	if err != nil {
		return fmt.Errorf("failed to intern new-window atom: %w", err)
	}

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if hooks.Configured != nil {
			hooks.Configured(int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height))
		}
	}).Connect(c.XUtil, windowID)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if hooks.Destroyed != nil {
			hooks.Destroyed()
		}
		xevent.Detach(xu, windowID)
	}).Connect(c.XUtil, windowID)

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		if hooks.Mapped != nil {
			hooks.Mapped()
		}
	}).Connect(c.XUtil, windowID)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Type != newWindowAtom || hooks.NewWindowURL == nil {
			return
		}
		url, err := xprop.PropValStr(xprop.GetProperty(xu, windowID, AtomNewWindowURL))
		if err != nil {
			url = ""
		}
		hooks.NewWindowURL(url)
	}).Connect(c.XUtil, windowID)

	return nil
}

// WatchKeyboardMapping subscribes to global keyboard mapping changes. The
// callback receives which mapping changed: "keyboard", "modifier" or
// "pointer".
func (c *Connection) WatchKeyboardMapping(fn func(kind string)) {
	xevent.MappingNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MappingNotifyEvent) {
		kind := "keyboard"
		switch ev.Request {
		case xproto.MappingModifier:
			kind = "modifier"
		case xproto.MappingPointer:
			kind = "pointer"
		}
		fn(kind)
	}).Connect(c.XUtil, xevent.NoWindow)
}
