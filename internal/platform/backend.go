package platform

import "github.com/1broseidon/zonetile/internal/geometry"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds geometry.Rect
	Usable geometry.Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds geometry.Rect
}

// Backend abstracts the window system. The layout core talks only to this
// interface; it has no knowledge of the concrete platform.
type Backend interface {
	// Displays enumerates physical displays with stable identifiers.
	Displays() ([]Display, error)
	// Windows enumerates the normal, user-facing windows.
	Windows() ([]Window, error)
	// FocusedWindow returns the window currently holding input focus.
	FocusedWindow() (WindowID, error)
	// Focus requests input focus for a window. A successful return does
	// not guarantee the host honored the request; callers confirm via
	// FocusedWindow.
	Focus(id WindowID) error
	// SetFrame positions and sizes a window.
	SetFrame(id WindowID, frame geometry.Rect) error
	// WarpPointer moves the mouse pointer to a screen coordinate.
	WarpPointer(pt geometry.Point) error
	// Pointer returns the current pointer position.
	Pointer() (geometry.Point, error)
}

// EventKind classifies host window-system events.
type EventKind int

const (
	// WindowOpened fires when a normal window appears.
	WindowOpened EventKind = iota
	// WindowClosed fires when a tracked window goes away.
	WindowClosed
	// WindowFocused fires when the host's focused window changes.
	WindowFocused
	// DragSample fires for each geometry change of a window while the
	// user is dragging it.
	DragSample
	// DisplaysChanged fires when the display configuration changes.
	DisplaysChanged
)

func (k EventKind) String() string {
	switch k {
	case WindowOpened:
		return "window-opened"
	case WindowClosed:
		return "window-closed"
	case WindowFocused:
		return "window-focused"
	case DragSample:
		return "drag-sample"
	case DisplaysChanged:
		return "displays-changed"
	default:
		return "unknown"
	}
}

// Event is one host notification. Window is zero for DisplaysChanged;
// Point carries the pointer position for DragSample events.
type Event struct {
	Kind   EventKind
	Window WindowID
	Point  geometry.Point
}
