// Package windowstate persists per-window geometry across process restarts.
package windowstate

// WindowState is the last known non-transient geometry of one logical window
// slot. Width and height are always positive; x and y may be negative on
// multi-monitor layouts extending left of or above the origin.
type WindowState struct {
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	X           int  `json:"x"`
	Y           int  `json:"y"`
	IsMaximized bool `json:"is_maximized,omitempty"`
}

// DefaultSlot is the window slot used for primary application windows.
const DefaultSlot = "main"
