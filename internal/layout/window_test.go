package layout

import (
	"testing"

	"github.com/1broseidon/zonetile/internal/geometry"
)

func TestFrameSelectsRestingOrFat(t *testing.T) {
	world, _ := buildWorld(30, true)
	w := NewWindow(7, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})

	if want := (geometry.Rect{X: 30, Y: 30, Width: 455, Height: 440}); w.frame(world) != want {
		t.Fatalf("resting frame: got %+v, want %+v", w.frame(world), want)
	}

	world.Focused = 7
	if want := (geometry.Rect{X: 14, Y: 14, Width: 487, Height: 472}); w.frame(world) != want {
		t.Fatalf("fat frame: got %+v, want %+v", w.frame(world), want)
	}

	// Growth is off: focus keeps the resting frame.
	world.Settings.GrowActive = false
	if want := (geometry.Rect{X: 30, Y: 30, Width: 455, Height: 440}); w.frame(world) != want {
		t.Fatalf("frame with growth off: got %+v, want %+v", w.frame(world), want)
	}
}

func TestFocusRetriesUntilHostConfirms(t *testing.T) {
	world, backend := buildWorld(30, true)
	w := NewWindow(7, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})

	// The host reports the old holder for two polls before honoring the
	// request.
	backend.confirmAfter = 2
	w.Focus(world)

	if world.Focused != 7 {
		t.Fatalf("tracked focus: got %d, want 7", world.Focused)
	}
	frame, ok := backend.frameOf(7)
	if !ok {
		t.Fatalf("no frame pushed on confirmation")
	}
	if want := (geometry.Rect{X: 14, Y: 14, Width: 487, Height: 472}); frame != want {
		t.Fatalf("confirmed frame: got %+v, want %+v", frame, want)
	}
}

func TestFocusGivesUpWhenHostNeverConfirms(t *testing.T) {
	world, backend := buildWorld(30, true)
	world.Focused = 3
	backend.focused = 3
	backend.neverConfirm = true

	w := NewWindow(7, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})
	w.Focus(world)

	// Giving up is silent: the previous record stands and no frame was
	// pushed for the window that never got focus.
	if world.Focused != 3 {
		t.Fatalf("tracked focus: got %d, want 3", world.Focused)
	}
	if _, ok := backend.frameOf(7); ok {
		t.Fatalf("frame pushed despite unconfirmed focus")
	}
}

func TestFocusStopsOnRequestError(t *testing.T) {
	world, backend := buildWorld(30, true)
	backend.focusErr = errFocusRejected

	w := NewWindow(7, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})
	w.Focus(world)

	if world.Focused != 0 {
		t.Fatalf("tracked focus: got %d, want 0", world.Focused)
	}
	if backend.focusCalls != 1 {
		t.Fatalf("focus requests: got %d, want 1", backend.focusCalls)
	}
}

func TestUpdateBoxSkipsDraggedWindow(t *testing.T) {
	world, backend := buildWorld(30, true)
	w := NewWindow(7, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})
	world.Dragging = 7

	w.UpdateBox(world, geometry.Rect{X: 515, Y: 15, Width: 485, Height: 470})

	if want := (geometry.Rect{X: 515, Y: 15, Width: 485, Height: 470}); w.Box() != want {
		t.Fatalf("box: got %+v, want %+v", w.Box(), want)
	}
	if backend.frameCalls != 0 {
		t.Fatalf("frame pushed while dragging: %d calls", backend.frameCalls)
	}

	// Once the drag ends the push resumes.
	world.Dragging = 0
	w.UpdateBox(world, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})
	if backend.frameCalls != 1 {
		t.Fatalf("frame calls after drag: got %d, want 1", backend.frameCalls)
	}
}

func TestUnfocusRestoresRestingFrame(t *testing.T) {
	world, backend := buildWorld(30, true)
	world.Focused = 7
	w := NewWindow(7, geometry.Rect{X: 15, Y: 15, Width: 485, Height: 470})

	w.Unfocus(world)

	frame, _ := backend.frameOf(7)
	if want := (geometry.Rect{X: 30, Y: 30, Width: 455, Height: 440}); frame != want {
		t.Fatalf("resting frame: got %+v, want %+v", frame, want)
	}
}
