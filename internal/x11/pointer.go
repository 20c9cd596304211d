package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// PointerPosition returns the pointer's root coordinates and whether mouse
// button 1 is currently held. The button state distinguishes user drags from
// programmatic window moves.
func (c *Connection) PointerPosition() (x, y int, button1 bool, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(reply.RootX), int(reply.RootY), reply.Mask&xproto.ButtonMask1 != 0, nil
}

// WarpPointer moves the pointer to root coordinates.
func (c *Connection) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(
		c.XUtil.Conn(),
		xproto.WindowNone,
		c.Root,
		0, 0, 0, 0,
		int16(x), int16(y),
	).Check()
}
