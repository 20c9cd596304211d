package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EventHandlers receives window-system notifications. All callbacks run on
// the event-loop goroutine, one at a time.
type EventHandlers struct {
	// WindowsChanged reports client-list membership changes.
	WindowsChanged func(added, removed []xproto.Window)
	// ActiveChanged reports a change of the focused window.
	ActiveChanged func(win xproto.Window)
	// Configured reports a geometry change of a tracked window.
	Configured func(win xproto.Window, x, y, width, height int)
	// ScreenChanged reports a RandR display-configuration change.
	ScreenChanged func()
}

// WatchEvents subscribes to root-window property changes, per-window
// structure changes, and RandR screen changes, dispatching to h from the
// event loop. Call once, before EventLoop.
func (c *Connection) WatchEvents(h EventHandlers) error {
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	clientListAtom, err := xprop.Atm(c.XUtil, "_NET_CLIENT_LIST")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_CLIENT_LIST: %w", err)
	}
	activeAtom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	// Seed the known set and subscribe existing clients so their configure
	// events arrive from the start.
	if clients, err := ewmh.ClientListGet(c.XUtil); err == nil {
		for _, win := range clients {
			c.knownClients[win] = true
			c.watchWindow(win, h)
		}
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		switch ev.Atom {
		case clientListAtom:
			added, removed := c.diffClientList()
			for _, win := range added {
				c.watchWindow(win, h)
			}
			if h.WindowsChanged != nil && (len(added) > 0 || len(removed) > 0) {
				h.WindowsChanged(added, removed)
			}
		case activeAtom:
			if h.ActiveChanged == nil {
				return
			}
			if win, err := ewmh.ActiveWindowGet(xu); err == nil {
				h.ActiveChanged(win)
			}
		}
	}).Connect(c.XUtil, c.Root)

	if err := c.WatchScreenChanges(); err != nil {
		return err
	}
	xevent.HookFun(func(xu *xgbutil.XUtil, event interface{}) bool {
		if _, ok := event.(randr.ScreenChangeNotifyEvent); ok && h.ScreenChanged != nil {
			h.ScreenChanged()
		}
		return true
	}).Connect(c.XUtil)

	return nil
}

// watchWindow subscribes one client window for structure notifications and
// wires its configure events.
func (c *Connection) watchWindow(win xproto.Window, h EventHandlers) {
	if err := xwindow.New(c.XUtil, win).Listen(xproto.EventMaskStructureNotify); err != nil {
		// The window may already be gone; the client-list diff catches it.
		return
	}
	if h.Configured == nil {
		return
	}
	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		h.Configured(ev.Window, int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height))
	}).Connect(c.XUtil, win)
}

// diffClientList compares the current EWMH client list against the known
// set, updating it in place.
func (c *Connection) diffClientList() (added, removed []xproto.Window) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, nil
	}

	current := make(map[xproto.Window]bool, len(clients))
	for _, win := range clients {
		current[win] = true
		if !c.knownClients[win] {
			added = append(added, win)
		}
	}
	for win := range c.knownClients {
		if !current[win] {
			removed = append(removed, win)
		}
	}

	c.knownClients = current
	return added, removed
}
