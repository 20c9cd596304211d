// Package layout implements the region tiling engine: displays partitioned
// into named regions, each holding an ordered run of windows laid out along
// one axis, with directional move/focus/swap actions that reshuffle within
// a region or hand windows across the adjacency graph.
package layout

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/1broseidon/zonetile/internal/state"
)

// ActionEvent describes one completed layout mutation for observers.
type ActionEvent struct {
	Action    Action
	Window    platform.WindowID
	Direction Direction
	From      RegionRef
	To        RegionRef
	// Dragged marks pointer-driven placements, which carry no direction.
	Dragged bool
}

// RegionPosition is a hit-test result: the region, the slot rectangle
// containing the point, and the slot index.
type RegionPosition struct {
	Region *Region
	Box    geometry.Rect
	Index  int
}

// Manager owns the world and serializes every entry point. Each event still
// runs to completion on its own; the mutex only orders the outer sources
// (X events, IPC, hotkeys and timers).
type Manager struct {
	mu    sync.Mutex
	world *World
	cfg   *config.Config
	drag  *DragMonitor

	// OnAction, when set, receives completed actions on a fresh goroutine.
	OnAction func(ActionEvent)
}

// New creates a manager over a backend. Init must run before any event
// entry point is used.
func New(backend platform.Backend, cfg *config.Config) *Manager {
	m := &Manager{
		world: NewWorld(backend, settingsFrom(cfg)),
		cfg:   cfg,
	}
	m.drag = NewDragMonitor(cfg.DragSettle(), m.dragStarted, m.dragSettled)
	return m
}

func settingsFrom(cfg *config.Config) Settings {
	return Settings{
		Margin:            cfg.Margin,
		GrowActive:        cfg.GrowActive,
		MouseFollowsFocus: cfg.MouseFollowsFocus,
		IgnoreApps:        cfg.IgnoreApps,
	}
}

// Init builds the display/region graph from configuration and the live
// window enumeration. A snapshot rehydrates membership for windows that
// still exist; without one, live windows are distributed over each
// display's regions round-robin with remainder.
func (m *Manager) Init(snap *state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked(snap)
}

// initLocked rebuilds wholesale. Displays and regions are never destroyed
// individually.
func (m *Manager) initLocked(snap *state.Snapshot) error {
	displays, err := m.world.Backend.Displays()
	if err != nil {
		return fmt.Errorf("failed to enumerate displays: %w", err)
	}
	windows, err := m.world.Backend.Windows()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}

	m.world.Displays = make(map[int]*Display)
	m.world.RegionOf = make(map[platform.WindowID]RegionRef)

	m.initDisplays(displays)
	m.initDisplayRegions(windows, snap)

	for _, d := range m.orderedDisplays() {
		d.Distribute(m.world)
	}
	return nil
}

// initDisplays constructs displays and regions from configuration, then
// resolves adjacency in a second pass once every region exists. Links whose
// target display is not live are dropped, degrading those directions to
// no-ops.
func (m *Manager) initDisplays(live []platform.Display) {
	for _, pd := range live {
		d := NewDisplay(pd.ID, pd.Name, pd.Usable)
		if def := m.cfg.DisplayFor(pd.ID, pd.Name); def != nil {
			for _, rd := range def.Regions {
				d.AddRegion(NewRegion(rd.Name, pd.ID, regionRect(pd.Usable, rd), rd.Vertical, rd.Default))
			}
		}
		m.world.Displays[pd.ID] = d
	}

	for _, pd := range live {
		def := m.cfg.DisplayFor(pd.ID, pd.Name)
		if def == nil {
			continue
		}
		d := m.world.Displays[pd.ID]
		for _, rd := range def.Regions {
			region := d.Regions[rd.Name]
			for dirName, target := range rd.Adjacent {
				dir, err := ParseDirection(dirName)
				if err != nil {
					continue
				}
				if ref, ok := resolveAdjacent(live, pd.ID, target); ok {
					region.Adjacent[dir] = ref
				}
			}
		}
	}
}

// regionRect resolves a region definition against a display's usable area.
func regionRect(usable geometry.Rect, def config.RegionDef) geometry.Rect {
	return geometry.Rect{
		X:      usable.X + usable.Width*def.XPercent/100,
		Y:      usable.Y + usable.Height*def.YPercent/100,
		Width:  usable.Width * def.WidthPercent / 100,
		Height: usable.Height * def.HeightPercent / 100,
	}
}

// resolveAdjacent maps an adjacency target to a region reference. An
// unqualified target stays on the same display; a qualified one matches a
// live display by RandR name or index.
func resolveAdjacent(live []platform.Display, displayID int, target string) (RegionRef, bool) {
	qualifier, name := config.SplitAdjacentTarget(target)
	if qualifier == "" {
		return RegionRef{Display: displayID, Name: name}, true
	}
	for _, pd := range live {
		if qualifier == pd.Name || qualifier == strconv.Itoa(pd.ID) {
			return RegionRef{Display: pd.ID, Name: name}, true
		}
	}
	return RegionRef{}, false
}

// initDisplayRegions assigns the live windows to regions, from a snapshot
// when one is given and round-robin otherwise.
func (m *Manager) initDisplayRegions(windows []platform.Window, snap *state.Snapshot) {
	managed := make([]platform.Window, 0, len(windows))
	for _, win := range windows {
		if !m.world.Settings.Ignored(win.AppID) {
			managed = append(managed, win)
		}
	}

	if snap != nil {
		m.rehydrate(managed, snap)
		return
	}

	byDisplay := make(map[int][]platform.Window)
	for _, win := range managed {
		if d := m.displayAt(win.Bounds.Center()); d != nil {
			byDisplay[d.ID] = append(byDisplay[d.ID], win)
		}
	}

	for _, d := range m.orderedDisplays() {
		wins := byDisplay[d.ID]
		regions := d.Ordered()
		if len(regions) == 0 || len(wins) == 0 {
			continue
		}
		groups := distributeWindows(len(wins), len(regions))
		i := 0
		for gi, size := range groups {
			for k := 0; k < size; k++ {
				regions[gi].addWindowEnd(m.world, NewWindow(wins[i].ID, wins[i].Bounds))
				i++
			}
		}
	}
}

// rehydrate restores membership from a snapshot, keeping only windows the
// host still reports and sending newcomers to their display's default
// region.
func (m *Manager) rehydrate(managed []platform.Window, snap *state.Snapshot) {
	liveByID := make(map[platform.WindowID]platform.Window, len(managed))
	for _, win := range managed {
		liveByID[win.ID] = win
	}

	placed := make(map[platform.WindowID]bool)
	for _, ds := range snap.Displays {
		d, ok := m.world.Displays[ds.Display]
		if !ok {
			continue
		}
		for _, rs := range ds.Regions {
			region, ok := d.Regions[rs.Name]
			if !ok {
				continue
			}
			for _, id := range rs.Windows {
				win, alive := liveByID[platform.WindowID(id)]
				if !alive || placed[win.ID] {
					continue
				}
				placed[win.ID] = true
				region.addWindowEnd(m.world, NewWindow(win.ID, win.Bounds))
			}
		}
	}

	for _, win := range managed {
		if !placed[win.ID] {
			m.adoptLocked(win)
		}
	}
}

// distributeWindows splits n windows into k ordered group sizes: the first
// n mod k groups take the ceiling share, the rest the floor.
func distributeWindows(n, k int) []int {
	if k <= 0 {
		return nil
	}
	sizes := make([]int, k)
	base, extra := n/k, n%k
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}

// adoptLocked wraps an untracked live window into the default region of the
// display under its center. Returns the region it joined, nil when the
// window is ignored, already tracked or homeless.
func (m *Manager) adoptLocked(win platform.Window) *Region {
	if _, tracked := m.world.RegionOf[win.ID]; tracked {
		return nil
	}
	if m.world.Settings.Ignored(win.AppID) {
		return nil
	}
	d := m.displayAt(win.Bounds.Center())
	if d == nil {
		d = m.firstDisplay()
	}
	if d == nil {
		return nil
	}
	region := d.DefaultRegion()
	if region == nil {
		return nil
	}
	region.addWindowEnd(m.world, NewWindow(win.ID, win.Bounds))
	return region
}

func (m *Manager) displayAt(pt geometry.Point) *Display {
	for _, d := range m.orderedDisplays() {
		if d.Box.Contains(pt) {
			return d
		}
	}
	return nil
}

func (m *Manager) firstDisplay() *Display {
	displays := m.orderedDisplays()
	if len(displays) == 0 {
		return nil
	}
	return displays[0]
}

func (m *Manager) orderedDisplays() []*Display {
	ids := make([]int, 0, len(m.world.Displays))
	for id := range m.world.Displays {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Display, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.world.Displays[id])
	}
	return out
}

// FindWindow resolves a window id to its wrapper and owning region. Both
// returns are nil when the id is untracked; callers must check.
func (m *Manager) FindWindow(id platform.WindowID) (*Window, *Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findWindowLocked(id)
}

func (m *Manager) findWindowLocked(id platform.WindowID) (*Window, *Region) {
	region := m.world.RegionForWindow(id)
	if region == nil {
		return nil, nil
	}
	idx := region.IndexOf(id)
	if idx < 0 {
		return nil, nil
	}
	return region.windows[idx], region
}

// FindRegionPosition resolves the region slot strictly containing pt.
// Displays scan in id order, regions in configuration order; boundary
// points match nothing.
func (m *Manager) FindRegionPosition(pt geometry.Point) (RegionPosition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findRegionPositionLocked(pt)
}

func (m *Manager) findRegionPositionLocked(pt geometry.Point) (RegionPosition, bool) {
	for _, d := range m.orderedDisplays() {
		for _, region := range d.Ordered() {
			for i, box := range region.hitBoxes(m.world) {
				if box.Contains(pt) {
					return RegionPosition{Region: region, Box: box, Index: i}, true
				}
			}
		}
	}
	return RegionPosition{}, false
}

// Do performs a directional action on a window, id 0 meaning the window the
// host reports focused. Untracked windows are a no-op.
func (m *Manager) Do(action Action, id platform.WindowID, dir Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == 0 {
		focused, err := m.world.Backend.FocusedWindow()
		if err != nil {
			return
		}
		id = focused
	}

	win, region := m.findWindowLocked(id)
	if win == nil {
		return
	}
	from := region.Ref()
	region.Do(m.world, action, win, dir)
	m.publish(ActionEvent{
		Action:    action,
		Window:    id,
		Direction: dir,
		From:      from,
		To:        m.world.RegionOf[id],
	})
}

// publish hands a completed action to the observer without holding the
// event path up.
func (m *Manager) publish(ev ActionEvent) {
	if m.OnAction == nil {
		return
	}
	go m.OnAction(ev)
}

// WindowOpened adopts a newly mapped window into the default region of the
// display under its center.
func (m *Manager) WindowOpened(id platform.WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, tracked := m.world.RegionOf[id]; tracked {
		return
	}
	win, ok := m.lookupLive(id)
	if !ok {
		return
	}
	if region := m.adoptLocked(win); region != nil {
		region.reconcileWindows(m.world)
	}
}

func (m *Manager) lookupLive(id platform.WindowID) (platform.Window, bool) {
	windows, err := m.world.Backend.Windows()
	if err != nil {
		return platform.Window{}, false
	}
	for _, win := range windows {
		if win.ID == id {
			return win, true
		}
	}
	return platform.Window{}, false
}

// WindowClosed is the authoritative removal: drop the window and re-lay the
// region it left.
func (m *Manager) WindowClosed(id platform.WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, region := m.findWindowLocked(id)
	if win == nil {
		return
	}
	region.removeWindow(m.world, win)
	region.reconcileWindows(m.world)
	if m.world.Focused == id {
		m.world.Focused = 0
	}
	if m.world.Dragging == id {
		m.world.Dragging = 0
	}
}

// WindowFocused tracks host-driven focus changes: the previous holder gets
// its resting frame back, the new one is recorded and grown. No focus
// request goes back to the host. Windows mid-drag keep their frames.
func (m *Manager) WindowFocused(id platform.WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.world.Focused == id {
		return
	}
	if prev, _ := m.findWindowLocked(m.world.Focused); prev != nil && m.world.Dragging != prev.ID {
		prev.Unfocus(m.world)
	}
	win, _ := m.findWindowLocked(id)
	if win == nil {
		m.world.Focused = 0
		return
	}
	m.world.Focused = id
	if m.world.Settings.GrowActive && m.world.Dragging != id {
		win.apply(m.world, win.withFat(m.world.Settings.Margin))
	}
}

// DisplaysChanged rebuilds the graph wholesale, carrying membership over
// through an in-memory snapshot.
func (m *Manager) DisplaysChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	_ = m.initLocked(&snap)
}

// OnDragSample feeds one pointer sample from a live window drag into the
// debouncer.
func (m *Manager) OnDragSample(id platform.WindowID, pt geometry.Point) {
	m.drag.Sample(id, pt)
}

// dragStarted is the first-sample side effect: mark the window as dragging
// so reconciles leave its frame alone.
func (m *Manager) dragStarted(id platform.WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.world.Dragging = id
}

// dragSettled commits a drop once the pointer has gone quiet. A hit in
// another region transfers the window there, a hit in its own region
// reorders it, and no hit snaps the window back into its current slot.
func (m *Manager) dragSettled(id platform.WindowID, pt geometry.Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.world.Dragging = 0

	win, source := m.findWindowLocked(id)
	if win == nil {
		return
	}

	pos, ok := m.findRegionPositionLocked(pt)
	if !ok {
		source.reconcileWindows(m.world)
		return
	}

	side := geometry.BeforeOrAfter(pt, pos.Box, pos.Region.Vertical)
	from := source.Ref()

	if pos.Region == source {
		insertAt := pos.Index
		if side == geometry.After {
			insertAt++
		}
		source.moveWithin(win, insertAt)
		source.reconcileWindows(m.world)
	} else {
		source.removeWindow(m.world, win)
		if side == geometry.Before {
			pos.Region.addWindowBefore(m.world, win, pos.Index)
		} else {
			pos.Region.addWindowAfter(m.world, win, pos.Index)
		}
		source.reconcileWindows(m.world)
		pos.Region.reconcileWindows(m.world)
	}

	m.publish(ActionEvent{
		Action:  ActionMove,
		Window:  id,
		From:    from,
		To:      m.world.RegionOf[id],
		Dragged: true,
	})
}

// Rebalance redistributes every display's windows across its regions round
// robin, as at a fresh start, keeping the current member order.
func (m *Manager) Rebalance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.orderedDisplays() {
		regions := d.Ordered()
		if len(regions) == 0 {
			continue
		}

		var wins []*Window
		for _, region := range regions {
			wins = append(wins, region.windows...)
			for _, win := range region.windows {
				delete(m.world.RegionOf, win.ID)
			}
			region.windows = nil
			region.reindex()
		}

		groups := distributeWindows(len(wins), len(regions))
		i := 0
		for gi, size := range groups {
			for k := 0; k < size; k++ {
				regions[gi].addWindowEnd(m.world, wins[i])
				i++
			}
		}
		d.Distribute(m.world)
	}
}

// Reconcile drops tracked windows the host no longer reports and adopts
// live ones that slipped past the event stream. Idempotent; the daemon
// runs it on a timer.
func (m *Manager) Reconcile(live []platform.Window) {
	m.mu.Lock()
	defer m.mu.Unlock()

	liveByID := make(map[platform.WindowID]platform.Window, len(live))
	for _, win := range live {
		liveByID[win.ID] = win
	}

	for _, d := range m.orderedDisplays() {
		for _, region := range d.Ordered() {
			removed := false
			for _, win := range append([]*Window(nil), region.windows...) {
				if _, alive := liveByID[win.ID]; !alive {
					region.removeWindow(m.world, win)
					removed = true
				}
			}
			if removed {
				region.reconcileWindows(m.world)
			}
		}
	}

	for _, win := range live {
		if _, tracked := m.world.RegionOf[win.ID]; tracked {
			continue
		}
		if region := m.adoptLocked(win); region != nil {
			region.reconcileWindows(m.world)
		}
	}
}

// Snapshot captures the current membership for persistence.
func (m *Manager) Snapshot() state.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() state.Snapshot {
	snap := state.Snapshot{
		SavedAt: time.Now().UTC(),
		Focused: uint32(m.world.Focused),
	}
	for _, d := range m.orderedDisplays() {
		ds := state.DisplaySnapshot{Display: d.ID, Name: d.Name}
		for _, region := range d.Ordered() {
			rs := state.RegionSnapshot{Name: region.Name}
			for _, win := range region.windows {
				rs.Windows = append(rs.Windows, uint32(win.ID))
			}
			ds.Regions = append(ds.Regions, rs)
		}
		snap.Displays = append(snap.Displays, ds)
	}
	return snap
}

// Restore rebuilds the graph from a snapshot, filtered to live windows.
func (m *Manager) Restore(snap *state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked(snap)
}

// ApplyConfig swaps runtime settings in place. When the display or region
// topology changed, the graph re-initializes, carrying membership through
// an in-memory snapshot. Hotkey bindings are not touched here.
func (m *Manager) ApplyConfig(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	topologyChanged := !reflect.DeepEqual(m.cfg.Displays, cfg.Displays)
	m.cfg = cfg
	m.world.Settings = settingsFrom(cfg)
	m.drag.SetQuiet(cfg.DragSettle())

	if !topologyChanged {
		for _, d := range m.orderedDisplays() {
			d.Distribute(m.world)
		}
		return nil
	}

	snap := m.snapshotLocked()
	return m.initLocked(&snap)
}
