// Package x11 is the concrete window-system layer: connection management,
// monitor enumeration, EWMH window operations, pointer control, and event
// watching. Everything above it goes through the platform abstraction.
package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	knownClients map[xproto.Window]bool
}

// NewConnection establishes a connection to the X11 server and initializes
// required extensions.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Keybind state is needed for global hotkeys; EWMH atoms are interned
	// lazily by xgbutil.
	keybind.Initialize(xu)

	return &Connection{
		XUtil:        xu,
		Root:         xu.RootWin(),
		knownClients: make(map[xproto.Window]bool),
	}, nil
}

// EventLoop runs the X11 event loop. Blocks until Quit.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops the event loop started by EventLoop.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
