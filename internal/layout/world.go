package layout

import (
	"strings"

	"github.com/1broseidon/zonetile/internal/platform"
)

// Settings is the slice of configuration the core consults at runtime.
type Settings struct {
	// Margin is the pixel gap between windows and region edges.
	Margin int
	// GrowActive paints the focused window slightly larger than its slot.
	GrowActive bool
	// MouseFollowsFocus warps the pointer when focus moves between slots.
	MouseFollowsFocus bool
	// IgnoreApps lists application ids never adopted into regions.
	IgnoreApps []string
}

// Ignored reports whether an application id is excluded from management.
func (s Settings) Ignored(appID string) bool {
	for _, name := range s.IgnoreApps {
		if strings.EqualFold(name, appID) {
			return true
		}
	}
	return false
}

// RegionRef identifies a region by display id and region name.
type RegionRef struct {
	Display int    `json:"display"`
	Name    string `json:"name"`
}

// World is the shared layout state, passed explicitly to every operation.
// Ownership: only Region methods mutate RegionOf, and only the Manager
// replaces Displays wholesale during init and restore.
type World struct {
	Backend  platform.Backend
	Settings Settings
	Displays map[int]*Display
	// RegionOf is the window ownership index. It always agrees with the
	// owning region's member list.
	RegionOf map[platform.WindowID]RegionRef
	// Focused is the last window whose focus the host confirmed.
	Focused platform.WindowID
	// Dragging is nonzero while a pointer drag burst is live; frame pushes
	// to that window are suppressed so the layout does not fight the user.
	Dragging platform.WindowID
}

// NewWorld creates an empty world over a backend.
func NewWorld(backend platform.Backend, settings Settings) *World {
	return &World{
		Backend:  backend,
		Settings: settings,
		Displays: make(map[int]*Display),
		RegionOf: make(map[platform.WindowID]RegionRef),
	}
}

// Region resolves a reference. Nil when the display or region is gone,
// which callers treat as a no-op.
func (w *World) Region(ref RegionRef) *Region {
	display, ok := w.Displays[ref.Display]
	if !ok {
		return nil
	}
	return display.Regions[ref.Name]
}

// RegionForWindow returns the region owning id, or nil when untracked.
func (w *World) RegionForWindow(id platform.WindowID) *Region {
	ref, ok := w.RegionOf[id]
	if !ok {
		return nil
	}
	return w.Region(ref)
}
