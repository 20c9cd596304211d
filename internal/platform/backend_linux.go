//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops a running event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays with their usable work areas.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		usable := conn.UsableArea(m)
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: geometry.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Usable: geometry.Rect{X: usable.X, Y: usable.Y, Width: usable.Width, Height: usable.Height},
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// Windows returns the normal, user-facing windows across all displays.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	infos, err := conn.ListNormalWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(infos))
	for _, info := range infos {
		windows = append(windows, Window{
			ID:     WindowID(info.ID),
			PID:    info.PID,
			AppID:  info.Class,
			Title:  info.Title,
			Bounds: geometry.Rect{X: info.X, Y: info.Y, Width: info.Width, Height: info.Height},
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})

	return windows, nil
}

// FocusedWindow returns the window currently holding input focus.
func (b *LinuxBackend) FocusedWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	win, err := conn.ActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(win), nil
}

// Focus requests input focus for a window.
func (b *LinuxBackend) Focus(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ActivateWindow(xproto.Window(id))
}

// SetFrame positions and sizes a window.
func (b *LinuxBackend) SetFrame(id WindowID, frame geometry.Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(id), frame.X, frame.Y, frame.Width, frame.Height)
}

// WarpPointer moves the mouse pointer to a screen coordinate.
func (b *LinuxBackend) WarpPointer(pt geometry.Point) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WarpPointer(pt.X, pt.Y)
}

// Pointer returns the current pointer position.
func (b *LinuxBackend) Pointer() (geometry.Point, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.Point{}, err
	}
	x, y, _, err := conn.PointerPosition()
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: x, Y: y}, nil
}

// WatchEvents subscribes to window-system notifications and forwards them
// as platform events. Configure notifications become DragSample events only
// while the primary pointer button is held; programmatic moves pass silently.
func (b *LinuxBackend) WatchEvents(emit func(Event)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.WatchEvents(x11.EventHandlers{
		WindowsChanged: func(added, removed []xproto.Window) {
			for _, win := range added {
				if conn.IsNormalWindow(win) {
					emit(Event{Kind: WindowOpened, Window: WindowID(win)})
				}
			}
			for _, win := range removed {
				emit(Event{Kind: WindowClosed, Window: WindowID(win)})
			}
		},
		ActiveChanged: func(win xproto.Window) {
			emit(Event{Kind: WindowFocused, Window: WindowID(win)})
		},
		Configured: func(win xproto.Window, x, y, width, height int) {
			px, py, held, err := conn.PointerPosition()
			if err != nil || !held {
				return
			}
			emit(Event{Kind: DragSample, Window: WindowID(win), Point: geometry.Point{X: px, Y: py}})
		},
		ScreenChanged: func() {
			emit(Event{Kind: DisplaysChanged})
		},
	})
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
