package layout

import (
	"errors"
	"sync"
	"testing"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
)

var errFocusRejected = errors.New("focus rejected")

// fakeBackend is an in-memory platform.Backend. Focus requests are normally
// confirmed on the next poll; confirmAfter withholds confirmation for that
// many polls and neverConfirm models a host that ignores requests entirely.
type fakeBackend struct {
	mu       sync.Mutex
	displays []platform.Display
	windows  []platform.Window
	focused  platform.WindowID
	pending  platform.WindowID
	frames   map[platform.WindowID]geometry.Rect
	warps    []geometry.Point

	confirmAfter int
	neverConfirm bool
	focusErr     error

	focusCalls int
	frameCalls int
}

func newFakeBackend(displays []platform.Display, windows []platform.Window) *fakeBackend {
	return &fakeBackend{
		displays: displays,
		windows:  windows,
		frames:   make(map[platform.WindowID]geometry.Rect),
	}
}

func (b *fakeBackend) Displays() ([]platform.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Display(nil), b.displays...), nil
}

func (b *fakeBackend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Window(nil), b.windows...), nil
}

func (b *fakeBackend) FocusedWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != 0 && !b.neverConfirm {
		if b.confirmAfter > 0 {
			b.confirmAfter--
		} else {
			b.focused = b.pending
			b.pending = 0
		}
	}
	return b.focused, nil
}

func (b *fakeBackend) Focus(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focusCalls++
	if b.focusErr != nil {
		return b.focusErr
	}
	b.pending = id
	return nil
}

func (b *fakeBackend) SetFrame(id platform.WindowID, frame geometry.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frameCalls++
	b.frames[id] = frame
	return nil
}

func (b *fakeBackend) WarpPointer(pt geometry.Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warps = append(b.warps, pt)
	return nil
}

func (b *fakeBackend) Pointer() (geometry.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.warps) == 0 {
		return geometry.Point{}, nil
	}
	return b.warps[len(b.warps)-1], nil
}

func (b *fakeBackend) frameOf(id platform.WindowID) (geometry.Rect, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	frame, ok := b.frames[id]
	return frame, ok
}

func (b *fakeBackend) setWindows(windows []platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = windows
}

func testDisplay() platform.Display {
	area := geometry.Rect{X: 0, Y: 0, Width: 1000, Height: 500}
	return platform.Display{ID: 0, Name: "DP-1", Bounds: area, Usable: area}
}

func testWindow(id platform.WindowID, x, y int) platform.Window {
	return platform.Window{
		ID:     id,
		AppID:  "term",
		Title:  "term",
		Bounds: geometry.Rect{X: x, Y: y, Width: 200, Height: 200},
	}
}

// oneRegionConfig covers the display with a single horizontal region.
func oneRegionConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Margin = 30
	cfg.Displays = []config.DisplayDef{{
		Match: "*",
		Regions: []config.RegionDef{
			{Name: "main", WidthPercent: 100, HeightPercent: 100, Default: true},
		},
	}}
	return cfg
}

// twoRegionConfig splits the display into adjacent left and right halves.
func twoRegionConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Margin = 30
	cfg.Displays = []config.DisplayDef{{
		Match: "*",
		Regions: []config.RegionDef{
			{Name: "left", WidthPercent: 50, HeightPercent: 100, Default: true,
				Adjacent: map[string]string{"east": "right"}},
			{Name: "right", XPercent: 50, WidthPercent: 50, HeightPercent: 100,
				Adjacent: map[string]string{"west": "left"}},
		},
	}}
	return cfg
}

func newTestManager(t *testing.T, cfg *config.Config, windows ...platform.Window) (*Manager, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend([]platform.Display{testDisplay()}, windows)
	m := New(backend, cfg)
	if err := m.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, backend
}

func regionNamed(t *testing.T, m *Manager, display int, name string) *Region {
	t.Helper()
	region := m.world.Region(RegionRef{Display: display, Name: name})
	if region == nil {
		t.Fatalf("region %d:%s not found", display, name)
	}
	return region
}

func memberIDs(r *Region) []platform.WindowID {
	ids := make([]platform.WindowID, 0, len(r.windows))
	for _, win := range r.windows {
		ids = append(ids, win.ID)
	}
	return ids
}

func sameIDs(a []platform.WindowID, b ...platform.WindowID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkWorldInvariants asserts the structural guarantees every operation
// must preserve: each window owned by exactly one region, the ownership
// index agreeing with member lists, and position indexes matching order.
func checkWorldInvariants(t *testing.T, world *World) {
	t.Helper()
	seen := make(map[platform.WindowID]RegionRef)
	for _, d := range world.Displays {
		for _, r := range d.Regions {
			for i, win := range r.windows {
				if prev, dup := seen[win.ID]; dup {
					t.Fatalf("window %d owned by both %v and %v", win.ID, prev, r.Ref())
				}
				seen[win.ID] = r.Ref()
				if got := r.IndexOf(win.ID); got != i {
					t.Fatalf("index of window %d: got %d, want %d", win.ID, got, i)
				}
				if ref, ok := world.RegionOf[win.ID]; !ok || ref != r.Ref() {
					t.Fatalf("ownership of window %d: got %v, want %v", win.ID, ref, r.Ref())
				}
			}
		}
	}
	if len(seen) != len(world.RegionOf) {
		t.Fatalf("ownership index has %d entries, want %d", len(world.RegionOf), len(seen))
	}
}
