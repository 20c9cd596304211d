package layout

import (
	"math"

	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
)

// Region is the layout container: an ordered run of windows laid out along
// one axis inside a named rectangle of a display.
//
// Mutation protocol: every operation that changes membership or order
// rebuilds the position index and, unless noted otherwise, reconciles so no
// member is left with stale geometry.
type Region struct {
	Name     string
	Display  int
	Box      geometry.Rect
	Vertical bool
	Default  bool
	Adjacent map[Direction]RegionRef

	windows []*Window
	index   map[platform.WindowID]int
}

// NewRegion creates an empty region.
func NewRegion(name string, display int, box geometry.Rect, vertical, isDefault bool) *Region {
	return &Region{
		Name:     name,
		Display:  display,
		Box:      box,
		Vertical: vertical,
		Default:  isDefault,
		Adjacent: make(map[Direction]RegionRef),
		index:    make(map[platform.WindowID]int),
	}
}

// Ref returns the region's identity in the window ownership index.
func (r *Region) Ref() RegionRef {
	return RegionRef{Display: r.Display, Name: r.Name}
}

// Windows returns the member windows in layout order.
func (r *Region) Windows() []*Window {
	return r.windows
}

// Len returns the member count.
func (r *Region) Len() int {
	return len(r.windows)
}

// IndexOf returns the slot of a window id, -1 when not a member.
func (r *Region) IndexOf(id platform.WindowID) int {
	if i, ok := r.index[id]; ok {
		return i
	}
	return -1
}

// reindex rebuilds the id to slot map from the window order. The map is
// always the exact inverse of the windows slice.
func (r *Region) reindex() {
	r.index = make(map[platform.WindowID]int, len(r.windows))
	for i, win := range r.windows {
		r.index[win.ID] = i
	}
}

// sides reports the edges touching another region on the same display.
// Cross-display adjacency keeps the full outer margin.
func (r *Region) sides() geometry.Sides {
	var s geometry.Sides
	for dir, ref := range r.Adjacent {
		if ref.Display != r.Display {
			continue
		}
		switch dir {
		case North:
			s.North = true
		case South:
			s.South = true
		case East:
			s.East = true
		case West:
			s.West = true
		}
	}
	return s
}

// hitBoxes returns the slot rectangles used for pointer hit-testing. An
// empty region probes as one full-width slot so drops into it still land.
func (r *Region) hitBoxes(world *World) []geometry.Rect {
	count := len(r.windows)
	if count == 0 {
		count = 1
	}
	return geometry.SubRegions(r.Box, count, r.Vertical, r.sides(), world.Settings.Margin)
}

// Do dispatches a directional action on a member window. The direction is
// internal when it runs along the region's own axis and a member exists one
// slot over on that side; everything else crosses the adjacency graph.
// Unknown windows are a no-op.
func (r *Region) Do(world *World, action Action, win *Window, dir Direction) {
	if win == nil {
		return
	}
	idx := r.IndexOf(win.ID)
	if idx < 0 {
		return
	}

	if r.isInternal(idx, dir) {
		switch action {
		case ActionMove, ActionSwap:
			r.swapNeighbor(world, idx, dir.IndexDelta())
		case ActionFocus:
			r.focusNeighbor(world, idx, dir.IndexDelta())
		}
		return
	}

	switch action {
	case ActionMove:
		r.moveRegion(world, win, dir)
	case ActionSwap:
		r.swapRegion(world, win, dir)
	case ActionFocus:
		r.focusRegion(world, win, dir)
	}
}

func (r *Region) isInternal(idx int, dir Direction) bool {
	if dir.Vertical() != r.Vertical {
		return false
	}
	next := idx + dir.IndexDelta()
	return next >= 0 && next < len(r.windows)
}

// swapNeighbor exchanges a window with the member one slot over. Move and
// swap are the same operation inside a region.
func (r *Region) swapNeighbor(world *World, idx, delta int) {
	next := idx + delta
	if idx < 0 || idx >= len(r.windows) || next < 0 || next >= len(r.windows) {
		return
	}
	r.windows[idx], r.windows[next] = r.windows[next], r.windows[idx]
	r.reindex()
	r.reconcileWindows(world)
}

// focusNeighbor hands host focus to the member one slot over, warping the
// pointer to its corner when mouse-follows-focus is on.
func (r *Region) focusNeighbor(world *World, idx, delta int) {
	next := idx + delta
	if idx < 0 || idx >= len(r.windows) || next < 0 || next >= len(r.windows) {
		return
	}
	r.windows[idx].Unfocus(world)
	target := r.windows[next]
	target.Focus(world)
	if world.Settings.MouseFollowsFocus {
		_ = world.Backend.WarpPointer(target.frame(world).TopLeft())
	}
}

// moveRegion hands the window to the region adjacent in dir. Missing
// adjacency is a no-op: directional movement simply stops at the edge of
// the graph.
func (r *Region) moveRegion(world *World, win *Window, dir Direction) {
	r.crossRegion(world, win, dir, false)
}

// swapRegion exchanges the window with its counterpart in the adjacent
// region.
func (r *Region) swapRegion(world *World, win *Window, dir Direction) {
	r.crossRegion(world, win, dir, true)
}

func (r *Region) crossRegion(world *World, win *Window, dir Direction, isSwap bool) {
	ref, ok := r.Adjacent[dir]
	if !ok {
		return
	}
	next := world.Region(ref)
	if next == nil || next == r {
		return
	}
	r.placeWindows(world, win, next, isSwap)
	r.reconcileWindows(world)
	next.reconcileWindows(world)
}

// placeWindows transfers win into next. An empty destination takes the
// window at slot 0. Otherwise the destination member closest to the mover
// anchors the operation: a swap exchanges the two windows' slots across the
// regions, a move inserts before or after the anchor by the destination's
// own primary axis.
func (r *Region) placeWindows(world *World, win *Window, next *Region, isSwap bool) {
	if len(next.windows) == 0 {
		r.removeWindow(world, win)
		next.addWindowStart(world, win)
		return
	}

	closest := findClosestWindow(win.Box().TopLeft(), next.windows)
	if closest == nil {
		return
	}

	if isSwap {
		srcIdx := r.IndexOf(win.ID)
		dstIdx := next.IndexOf(closest.ID)
		if srcIdx < 0 || dstIdx < 0 {
			return
		}
		r.windows[srcIdx] = closest
		next.windows[dstIdx] = win
		world.RegionOf[closest.ID] = r.Ref()
		world.RegionOf[win.ID] = next.Ref()
		r.reindex()
		next.reindex()
		return
	}

	dstIdx := next.IndexOf(closest.ID)
	if dstIdx < 0 {
		return
	}
	r.removeWindow(world, win)
	if isBefore(win.Box().TopLeft(), closest.Box().TopLeft(), next.Vertical) {
		next.addWindowBefore(world, win, dstIdx)
	} else {
		next.addWindowAfter(world, win, dstIdx)
	}
}

// isBefore compares two top-left corners along a primary axis: vertical
// regions compare rows, horizontal regions compare columns. Ties land
// after, matching geometry.BeforeOrAfter.
func isBefore(pt, anchor geometry.Point, vertical bool) bool {
	if vertical {
		return pt.Y < anchor.Y
	}
	return pt.X < anchor.X
}

// focusRegion shifts focus across the adjacency graph. A missing link falls
// back to the related direction (almost-adjacent), and an empty target
// forwards the request to its own same-direction neighbor so focus skips
// straight over empty regions. The visited set terminates adjacency cycles.
func (r *Region) focusRegion(world *World, win *Window, dir Direction) {
	r.focusRegionFrom(world, win, dir, map[RegionRef]bool{r.Ref(): true})
}

func (r *Region) focusRegionFrom(world *World, win *Window, dir Direction, visited map[RegionRef]bool) {
	ref, ok := r.Adjacent[dir]
	if !ok {
		ref, ok = r.Adjacent[dir.Related()]
	}
	if !ok || visited[ref] {
		return
	}
	visited[ref] = true

	next := world.Region(ref)
	if next == nil {
		return
	}
	if len(next.windows) == 0 {
		next.focusRegionFrom(world, win, dir, visited)
		return
	}

	target := next.windows[0]
	if win != nil {
		if closest := findClosestWindow(win.Box().TopLeft(), next.windows); closest != nil {
			target = closest
		}
		win.Unfocus(world)
	}
	target.Focus(world)
}

// removeWindow drops a member and its ownership entry. Deliberately no
// reconcile here: callers batch geometry updates.
func (r *Region) removeWindow(world *World, win *Window) {
	idx := r.IndexOf(win.ID)
	if idx < 0 {
		return
	}
	r.windows = append(r.windows[:idx], r.windows[idx+1:]...)
	if ref, ok := world.RegionOf[win.ID]; ok && ref == r.Ref() {
		delete(world.RegionOf, win.ID)
	}
	r.reindex()
}

// addWindowStart inserts at slot 0 and takes ownership.
func (r *Region) addWindowStart(world *World, win *Window) {
	r.insertWindow(world, win, 0)
}

// addWindowBefore inserts at slot i.
func (r *Region) addWindowBefore(world *World, win *Window, i int) {
	r.insertWindow(world, win, i)
}

// addWindowAfter inserts at slot i+1.
func (r *Region) addWindowAfter(world *World, win *Window, i int) {
	r.insertWindow(world, win, i+1)
}

// addWindowEnd appends to the last slot.
func (r *Region) addWindowEnd(world *World, win *Window) {
	r.insertWindow(world, win, len(r.windows))
}

// insertWindow places win at slot i (clamped), records ownership and
// reindexes.
func (r *Region) insertWindow(world *World, win *Window, i int) {
	if i < 0 {
		i = 0
	}
	if i > len(r.windows) {
		i = len(r.windows)
	}
	r.windows = append(r.windows, nil)
	copy(r.windows[i+1:], r.windows[i:])
	r.windows[i] = win
	world.RegionOf[win.ID] = r.Ref()
	r.reindex()
}

// moveWithin reorders a member to sit at insertAt, interpreted against the
// pre-removal order.
func (r *Region) moveWithin(win *Window, insertAt int) {
	idx := r.IndexOf(win.ID)
	if idx < 0 {
		return
	}
	r.windows = append(r.windows[:idx], r.windows[idx+1:]...)
	if insertAt > idx {
		insertAt--
	}
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(r.windows) {
		insertAt = len(r.windows)
	}
	r.windows = append(r.windows, nil)
	copy(r.windows[insertAt+1:], r.windows[insertAt:])
	r.windows[insertAt] = win
	r.reindex()
}

// reconcileWindows recomputes every member's slot rectangle and pushes the
// frames. Idempotent and safe to call redundantly; an empty region is a
// no-op.
func (r *Region) reconcileWindows(world *World) {
	if len(r.windows) == 0 {
		return
	}
	r.reindex()
	subs := geometry.SubRegions(r.Box, len(r.windows), r.Vertical, r.sides(), world.Settings.Margin)
	for i, win := range r.windows {
		win.UpdateBox(world, subs[i])
	}
}

// findClosestWindow returns the candidate whose top-left corner is nearest
// to pt. Nil when candidates is empty; callers must check.
func findClosestWindow(pt geometry.Point, candidates []*Window) *Window {
	var best *Window
	bestDist := math.MaxFloat64
	for _, win := range candidates {
		if d := geometry.Distance(pt, win.Box().TopLeft()); d < bestDist {
			best = win
			bestDist = d
		}
	}
	return best
}
