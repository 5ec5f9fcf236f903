package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates. X and Y may be
// negative on multi-monitor layouts that extend left of or above the origin.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// ReadyInfo is the payload delivered with the native application-ready signal.
// It is passed through to lifecycle contributions unmodified.
type ReadyInfo struct {
	Backend  string
	Display  string
	Displays []Display
}

// WindowOptions describes a window to be created. Windows always start hidden;
// the caller reveals them once the backend reports ready-to-show.
type WindowOptions struct {
	Title     string
	X         int
	Y         int
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	Maximized bool
	Show      bool
}

// WindowEvents holds per-window event callbacks. Nil callbacks are ignored.
type WindowEvents struct {
	ReadyToShow           func()
	Closed                func()
	Resized               func(Rect)
	Moved                 func(Rect)
	NewWindowRequested    func(url string)
	KeyboardLayoutChanged func(layout string)
}

// MenuItem is one entry in the application menu template.
type MenuItem struct {
	Label    string     `json:"label"`
	Role     string     `json:"role,omitempty"`
	Children []MenuItem `json:"children,omitempty"`
}

// Menu replaces the host's default application menu.
type Menu struct {
	Items []MenuItem `json:"items"`
}

// Backend abstracts the native window system. Calls are safe for concurrent
// use; event callbacks fire on the backend's event loop.
type Backend interface {
	Displays() ([]Display, error)
	DisplayNearestPointer() (Display, error)

	CreateWindow(opts WindowOptions) (WindowID, error)
	ShowWindow(id WindowID) error
	MaximizeWindow(id WindowID) error
	WindowBounds(id WindowID) (Rect, error)
	WindowMaximized(id WindowID) (bool, error)
	WindowAlive(id WindowID) bool
	LoadURL(id WindowID, url string) error
	SendToWindow(id WindowID, channel, payload string) error
	BindWindowEvents(id WindowID, ev WindowEvents) error

	OnAppReady(fn func(ReadyInfo))
	SetMenu(m Menu) error
	OpenExternal(url string) error

	EventLoop()
	Disconnect()
}
