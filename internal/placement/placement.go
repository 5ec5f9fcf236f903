// Package placement computes initial window geometry.
package placement

import (
	"github.com/1broseidon/appshell/internal/platform"
	"github.com/1broseidon/appshell/internal/windowstate"
)

// Fixed minimum window bounds applied to every window.
const (
	MinWidth  = 200
	MinHeight = 120
)

// Policy derives window options from persisted state or display geometry,
// plus static product identity.
type Policy struct {
	Title     string
	MinWidth  int
	MinHeight int
}

// NewPolicy creates a policy with the product title and the fixed minimums.
func NewPolicy(title string) Policy {
	return Policy{Title: title, MinWidth: MinWidth, MinHeight: MinHeight}
}

// Options computes the creation options for one window. A persisted state is
// used verbatim, including the maximized flag. Otherwise the window takes two
// thirds of the given display and is centered on it — the display should be
// the one nearest the pointer, never blindly the primary, so the window can
// never span a screen boundary on multi-monitor setups. Windows always start
// hidden; the caller reveals them on ready-to-show.
func (p Policy) Options(persisted *windowstate.WindowState, display platform.Rect) platform.WindowOptions {
	opts := platform.WindowOptions{
		Title:     p.Title,
		MinWidth:  p.MinWidth,
		MinHeight: p.MinHeight,
		Show:      false,
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = MinWidth
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = MinHeight
	}

	if persisted != nil {
		opts.X = persisted.X
		opts.Y = persisted.Y
		opts.Width = persisted.Width
		opts.Height = persisted.Height
		opts.Maximized = persisted.IsMaximized
		return opts
	}

	opts.Width = display.Width * 2 / 3
	opts.Height = display.Height * 2 / 3
	opts.X = display.X + (display.Width-opts.Width)/2
	opts.Y = display.Y + (display.Height-opts.Height)/2
	return opts
}
