package layout

import (
	"time"

	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
)

// Focus confirmation bounds. Hosts may momentarily hand focus back to the
// previously active window right after a request, so each request is
// verified with several short polls before being reissued.
const (
	focusAttempts = 5
	focusPolls    = 4
	focusPollGap  = 10 * time.Millisecond
)

// Window wraps one host window together with the slot rectangle its owning
// region assigned to it.
type Window struct {
	ID platform.WindowID

	box geometry.Rect
}

// NewWindow wraps a host window id with its initial rectangle.
func NewWindow(id platform.WindowID, box geometry.Rect) *Window {
	return &Window{ID: id, box: box}
}

// Box returns the slot rectangle currently assigned by the owning region.
func (w *Window) Box() geometry.Rect {
	return w.box
}

// withMargin is the resting frame: the slot inset by half the margin on
// every side, a net shrink of one margin per axis.
func (w *Window) withMargin(margin int) geometry.Rect {
	return w.box.Inset(margin / 2)
}

// withFat is the focused frame: the slot grown past its gutters by a
// sixteenth of the margin per side.
func (w *Window) withFat(margin int) geometry.Rect {
	return w.box.Inset(-(margin / 16))
}

// frame returns the rectangle currently owed to the host for this window.
func (w *Window) frame(world *World) geometry.Rect {
	if world.Focused == w.ID && world.Settings.GrowActive {
		return w.withFat(world.Settings.Margin)
	}
	return w.withMargin(world.Settings.Margin)
}

// apply pushes a frame to the host. A rejection means the window is gone;
// the close event performs the authoritative cleanup.
func (w *Window) apply(world *World, frame geometry.Rect) {
	_ = world.Backend.SetFrame(w.ID, frame)
}

// Focus requests host focus and retries until the host confirms this window
// holds it. On confirmation the world's focused pointer moves here and the
// fat frame is applied when grow-active is on. Giving up is silent: the
// world keeps its previous focus record.
func (w *Window) Focus(world *World) {
	for attempt := 0; attempt < focusAttempts; attempt++ {
		if err := world.Backend.Focus(w.ID); err != nil {
			return
		}
		for poll := 0; poll < focusPolls; poll++ {
			focused, err := world.Backend.FocusedWindow()
			if err == nil && focused == w.ID {
				world.Focused = w.ID
				if world.Settings.GrowActive {
					w.apply(world, w.withFat(world.Settings.Margin))
				}
				return
			}
			time.Sleep(focusPollGap)
		}
	}
}

// Unfocus restores the resting frame, undoing any focus growth.
func (w *Window) Unfocus(world *World) {
	w.apply(world, w.withMargin(world.Settings.Margin))
}

// UpdateBox assigns a new slot rectangle and immediately pushes the
// matching frame, fat or resting depending on focus. The push is skipped
// while the user is dragging this window.
func (w *Window) UpdateBox(world *World, box geometry.Rect) {
	w.box = box
	if world.Dragging == w.ID {
		return
	}
	w.apply(world, w.frame(world))
}
