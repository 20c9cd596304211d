package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents one physical display.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR, ordered by CRTC.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// WatchScreenChanges subscribes to RandR screen-change notifications on the
// root window. Events arrive through the main event loop.
func (c *Connection) WatchScreenChanges() error {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	return randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
}

// UsableArea returns the monitor's geometry minus panels and docks. Dock
// struts take precedence; when no dock advertises struts the EWMH work area
// is intersected instead. The raw geometry is returned when neither applies.
func (c *Connection) UsableArea(mon Monitor) Monitor {
	if c.clampToStruts(&mon) {
		return mon
	}
	c.clampToWorkArea(&mon)
	return mon
}

// clampToStruts shrinks mon by every dock strut overlapping it. Reports
// whether any strut applied.
func (c *Connection) clampToStruts(mon *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW := int(rootGeom.Width)
	rootH := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var left, right, top, bottom int
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			// Some docks only set the non-partial _NET_WM_STRUT.
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftStartY: 0, LeftEndY: uint(rootH - 1),
				RightStartY: 0, RightEndY: uint(rootH - 1),
				TopStartX: 0, TopEndX: uint(rootW - 1),
				BottomStartX: 0, BottomEndX: uint(rootW - 1),
			}
		}

		if sp.Top > 0 {
			if w, h := overlap(mon, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top)); w > 0 {
				top = max(top, h)
			}
		}
		if sp.Bottom > 0 {
			if w, h := overlap(mon, int(sp.BottomStartX), rootH-int(sp.Bottom), int(sp.BottomEndX)+1, rootH); w > 0 {
				bottom = max(bottom, h)
			}
		}
		if sp.Left > 0 {
			if w, _ := overlap(mon, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1); w > 0 {
				left = max(left, w)
			}
		}
		if sp.Right > 0 {
			if w, _ := overlap(mon, rootW-int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY)+1); w > 0 {
				right = max(right, w)
			}
		}
	}

	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return false
	}

	mon.X += left
	mon.Y += top
	mon.Width = max(mon.Width-left-right, 1)
	mon.Height = max(mon.Height-top-bottom, 1)
	return true
}

// clampToWorkArea intersects mon with the current desktop's _NET_WORKAREA.
func (c *Connection) clampToWorkArea(mon *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}

	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workArea) {
		idx = int(desktop)
	}
	wa := workArea[idx]

	x1 := max(mon.X, int(wa.X))
	y1 := max(mon.Y, int(wa.Y))
	x2 := min(mon.X+mon.Width, int(wa.X)+int(wa.Width))
	y2 := min(mon.Y+mon.Height, int(wa.Y)+int(wa.Height))
	if x2 > x1 && y2 > y1 {
		mon.X = x1
		mon.Y = y1
		mon.Width = x2 - x1
		mon.Height = y2 - y1
	}
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// overlap returns the intersection size of mon and the rectangle spanned by
// the half-open ranges [bx1,bx2) x [by1,by2).
func overlap(mon *Monitor, bx1, by1, bx2, by2 int) (w, h int) {
	x1 := max(mon.X, bx1)
	y1 := max(mon.Y, by1)
	x2 := min(mon.X+mon.Width, bx2)
	y2 := min(mon.Y+mon.Height, by2)
	if x2 <= x1 || y2 <= y1 {
		return 0, 0
	}
	return x2 - x1, y2 - y1
}
