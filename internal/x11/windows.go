package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowInfo carries the identity and root-relative geometry of one
// top-level window.
type WindowInfo struct {
	ID     xproto.Window
	PID    int
	Class  string
	Title  string
	X      int
	Y      int
	Width  int
	Height int
}

// ListNormalWindows returns the EWMH client list filtered down to normal,
// visible, current-desktop windows with resolvable geometry.
func (c *Connection) ListNormalWindows() ([]WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)
	hasDesktop := desktopErr == nil

	windows := make([]WindowInfo, 0, len(clients))
	for _, win := range clients {
		if !c.IsNormalWindow(win) || c.isHiddenOrFullscreen(win) {
			continue
		}
		if hasDesktop {
			if desktop, err := ewmh.WmDesktopGet(c.XUtil, win); err == nil &&
				desktop != 0xFFFFFFFF && desktop != currentDesktop {
				continue
			}
		}

		x, y, w, h, ok := c.WindowGeometry(win)
		if !ok {
			continue
		}

		pid := 0
		if p, err := ewmh.WmPidGet(c.XUtil, win); err == nil {
			pid = int(p)
		}

		windows = append(windows, WindowInfo{
			ID:     win,
			PID:    pid,
			Class:  c.WindowClass(win),
			Title:  c.WindowTitle(win),
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		})
	}

	return windows, nil
}

// WindowGeometry returns a window's root-relative position and size.
// TranslateCoordinates handles reparenting window managers.
func (c *Connection) WindowGeometry(win xproto.Window) (x, y, w, h int, ok bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

// MoveResizeWindow positions a window, unmaximizing it first when needed.
// Width and height are clamped to at least one pixel.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	c.unmaximize(win)

	width = max(width, 1)
	height = max(height, 1)

	// EWMH moveresize plays nicer with window managers; fall back to a
	// direct configure for WMs that ignore the client message.
	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			ewmh.WmStateReq(c.XUtil, win, 0, state)
		}
	}
}

// ActivateWindow focuses and raises a window via _NET_ACTIVE_WINDOW. The
// client message is built manually because the ewmh helper panics on this
// library version (uint vs int type assertion).
func (c *Connection) ActivateWindow(win xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// ActiveWindow returns the window currently holding focus.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// IsNormalWindow reports whether a window is a normal application window
// rather than a desktop, dock, splash, or notification surface.
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		// Unknown type: assume normal.
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_MENU":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) isHiddenOrFullscreen(win xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN", "_NET_WM_STATE_FULLSCREEN":
			return true
		}
	}
	return false
}

// WindowTitle returns the EWMH window name, falling back to the ICCCM name.
func (c *Connection) WindowTitle(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowClass returns the WM_CLASS class name.
func (c *Connection) WindowClass(win xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}
