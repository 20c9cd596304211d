package layout

import (
	"testing"
	"time"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
)

func threeRegionConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Margin = 30
	cfg.Displays = []config.DisplayDef{{
		Match: "*",
		Regions: []config.RegionDef{
			{Name: "a", WidthPercent: 33, HeightPercent: 100, Default: true},
			{Name: "b", XPercent: 33, WidthPercent: 33, HeightPercent: 100},
			{Name: "c", XPercent: 66, WidthPercent: 34, HeightPercent: 100},
		},
	}}
	return cfg
}

func TestDistributeWindowsShares(t *testing.T) {
	cases := []struct {
		n, k int
		want []int
	}{
		{7, 3, []int{3, 2, 2}},
		{3, 3, []int{1, 1, 1}},
		{2, 3, []int{1, 1, 0}},
		{0, 2, []int{0, 0}},
		{5, 1, []int{5}},
		{4, 0, nil},
	}
	for _, tc := range cases {
		got := distributeWindows(tc.n, tc.k)
		if len(got) != len(tc.want) {
			t.Fatalf("distributeWindows(%d, %d): got %v, want %v", tc.n, tc.k, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("distributeWindows(%d, %d): got %v, want %v", tc.n, tc.k, got, tc.want)
			}
		}
	}
}

func TestInitDistributesRoundRobin(t *testing.T) {
	windows := make([]platform.Window, 0, 7)
	for id := platform.WindowID(1); id <= 7; id++ {
		windows = append(windows, testWindow(id, int(id)*20, 40))
	}
	m, _ := newTestManager(t, threeRegionConfig(), windows...)

	// Seven windows over three regions: the first takes the extra.
	if got := memberIDs(regionNamed(t, m, 0, "a")); !sameIDs(got, 1, 2, 3) {
		t.Fatalf("region a: got %v, want [1 2 3]", got)
	}
	if got := memberIDs(regionNamed(t, m, 0, "b")); !sameIDs(got, 4, 5) {
		t.Fatalf("region b: got %v, want [4 5]", got)
	}
	if got := memberIDs(regionNamed(t, m, 0, "c")); !sameIDs(got, 6, 7) {
		t.Fatalf("region c: got %v, want [6 7]", got)
	}
	checkWorldInvariants(t, m.world)
}

func TestInitIgnoresConfiguredApps(t *testing.T) {
	cfg := oneRegionConfig()
	cfg.IgnoreApps = []string{"dock"}

	ignored := testWindow(9, 600, 100)
	ignored.AppID = "Dock"
	m, _ := newTestManager(t, cfg, testWindow(1, 10, 10), ignored)

	if got := memberIDs(regionNamed(t, m, 0, "main")); !sameIDs(got, 1) {
		t.Fatalf("main: got %v, want [1]", got)
	}
	if _, tracked := m.world.RegionOf[9]; tracked {
		t.Fatalf("ignored app was adopted")
	}
}

func TestInitResolvesAdjacency(t *testing.T) {
	m, _ := newTestManager(t, twoRegionConfig(), testWindow(101, 10, 10))

	left := regionNamed(t, m, 0, "left")
	right := regionNamed(t, m, 0, "right")
	if ref, ok := left.Adjacent[East]; !ok || ref != right.Ref() {
		t.Fatalf("left east link: got %v, want %v", ref, right.Ref())
	}
	if ref, ok := right.Adjacent[West]; !ok || ref != left.Ref() {
		t.Fatalf("right west link: got %v, want %v", ref, left.Ref())
	}
}

func TestWindowOpenedAdoptsIntoDefaultRegion(t *testing.T) {
	m, backend := newTestManager(t, twoRegionConfig(), testWindow(101, 10, 10))

	// A new window appears on the host, centered over the right half, but
	// adoption targets the display's default region.
	backend.setWindows([]platform.Window{testWindow(101, 10, 10), testWindow(102, 700, 100)})
	m.WindowOpened(102)

	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101, 102) {
		t.Fatalf("left: got %v, want [101 102]", got)
	}
	checkWorldInvariants(t, m.world)

	// Re-announcing a tracked window changes nothing.
	m.WindowOpened(102)
	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101, 102) {
		t.Fatalf("left after duplicate open: got %v", got)
	}

	// A window the host does not report is not adopted.
	m.WindowOpened(999)
	if _, tracked := m.world.RegionOf[999]; tracked {
		t.Fatalf("phantom window was adopted")
	}
}

func TestWindowClosedReflowsRegion(t *testing.T) {
	m, _ := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10), testWindow(2, 600, 10))
	m.world.Focused = 1

	m.WindowClosed(1)

	main := regionNamed(t, m, 0, "main")
	if got := memberIDs(main); !sameIDs(got, 2) {
		t.Fatalf("main: got %v, want [2]", got)
	}
	// The survivor takes the whole region.
	if want := (geometry.Rect{X: 15, Y: 15, Width: 970, Height: 470}); main.Windows()[0].Box() != want {
		t.Fatalf("surviving slot: got %+v, want %+v", main.Windows()[0].Box(), want)
	}
	if m.world.Focused != 0 {
		t.Fatalf("focus record not cleared: %d", m.world.Focused)
	}
	checkWorldInvariants(t, m.world)
}

func TestWindowFocusedTracksHostFocus(t *testing.T) {
	m, backend := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10), testWindow(2, 600, 10))

	m.WindowFocused(1)
	m.WindowFocused(2)

	if m.world.Focused != 2 {
		t.Fatalf("tracked focus: got %d, want 2", m.world.Focused)
	}
	// Host-driven focus never issues a focus request back.
	if backend.focusCalls != 0 {
		t.Fatalf("focus requests: got %d, want 0", backend.focusCalls)
	}
	// The old holder rests, the new one grows.
	frame1, _ := backend.frameOf(1)
	if want := (geometry.Rect{X: 30, Y: 30, Width: 455, Height: 440}); frame1 != want {
		t.Fatalf("previous frame: got %+v, want %+v", frame1, want)
	}
	frame2, _ := backend.frameOf(2)
	if want := (geometry.Rect{X: 514, Y: 14, Width: 487, Height: 472}); frame2 != want {
		t.Fatalf("focused frame: got %+v, want %+v", frame2, want)
	}

	// Focus moving to an untracked window clears the record.
	m.WindowFocused(999)
	if m.world.Focused != 0 {
		t.Fatalf("focus record after untracked: got %d, want 0", m.world.Focused)
	}
}

func TestDoUsesHostFocusForZeroWindow(t *testing.T) {
	m, backend := newTestManager(t, twoRegionConfig(),
		testWindow(101, 10, 10), testWindow(102, 700, 100))
	backend.focused = 101

	events := make(chan ActionEvent, 1)
	m.OnAction = func(ev ActionEvent) { events <- ev }

	m.Do(ActionMove, 0, East)

	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 101, 102) {
		t.Fatalf("right: got %v, want [101 102]", got)
	}
	select {
	case ev := <-events:
		if ev.Action != ActionMove || ev.Window != 101 || ev.Dragged {
			t.Fatalf("event: got %+v", ev)
		}
		if ev.From != (RegionRef{Display: 0, Name: "left"}) || ev.To != (RegionRef{Display: 0, Name: "right"}) {
			t.Fatalf("event refs: got from %v to %v", ev.From, ev.To)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no action event published")
	}
	checkWorldInvariants(t, m.world)
}

func TestDragSettleMovesAcrossRegions(t *testing.T) {
	m, _ := newTestManager(t, twoRegionConfig(), testWindow(101, 10, 10))

	events := make(chan ActionEvent, 1)
	m.OnAction = func(ev ActionEvent) { events <- ev }

	m.dragStarted(101)
	if m.world.Dragging != 101 {
		t.Fatalf("dragging: got %d, want 101", m.world.Dragging)
	}

	// Drop inside the empty right region: it probes as one full slot.
	m.dragSettled(101, geometry.Point{X: 750, Y: 250})

	if m.world.Dragging != 0 {
		t.Fatalf("dragging still set after settle")
	}
	if regionNamed(t, m, 0, "left").Len() != 0 {
		t.Fatalf("left not emptied: %v", memberIDs(regionNamed(t, m, 0, "left")))
	}
	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 101) {
		t.Fatalf("right: got %v, want [101]", got)
	}
	select {
	case ev := <-events:
		if !ev.Dragged || ev.Window != 101 {
			t.Fatalf("event: got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no drag event published")
	}
	checkWorldInvariants(t, m.world)
}

func TestDragSettleReordersWithinRegion(t *testing.T) {
	m, _ := newTestManager(t, oneRegionConfig(),
		testWindow(1, 10, 10), testWindow(2, 400, 10), testWindow(3, 700, 10))

	m.dragStarted(1)
	// The third slot spans x 681..1000 with its midpoint at 840; 900 lands
	// in the after half.
	m.dragSettled(1, geometry.Point{X: 900, Y: 100})

	if got := memberIDs(regionNamed(t, m, 0, "main")); !sameIDs(got, 2, 3, 1) {
		t.Fatalf("order: got %v, want [2 3 1]", got)
	}
	checkWorldInvariants(t, m.world)
}

func TestDragSettleOutsideSnapsBack(t *testing.T) {
	m, backend := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10), testWindow(2, 600, 10))

	m.dragStarted(1)
	// The gutter between the two slots hits neither.
	m.dragSettled(1, geometry.Point{X: 505, Y: 100})

	if got := memberIDs(regionNamed(t, m, 0, "main")); !sameIDs(got, 1, 2) {
		t.Fatalf("order: got %v, want [1 2]", got)
	}
	// The snap-back re-pushed the window's slot frame.
	frame, _ := backend.frameOf(1)
	if want := (geometry.Rect{X: 30, Y: 30, Width: 455, Height: 440}); frame != want {
		t.Fatalf("frame: got %+v, want %+v", frame, want)
	}
	if m.world.Dragging != 0 {
		t.Fatalf("dragging still set after settle")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m, _ := newTestManager(t, twoRegionConfig(),
		testWindow(101, 10, 10), testWindow(102, 300, 10), testWindow(103, 700, 10))

	// left=[101 102] right=[103]; shift 102 east.
	m.Do(ActionMove, 102, East)
	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 102, 103) {
		t.Fatalf("right before snapshot: got %v", got)
	}

	snap := m.Snapshot()

	m.Rebalance()
	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101, 102) {
		t.Fatalf("left after rebalance: got %v", got)
	}

	if err := m.Restore(&snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101) {
		t.Fatalf("left after restore: got %v, want [101]", got)
	}
	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 102, 103) {
		t.Fatalf("right after restore: got %v, want [102 103]", got)
	}
	checkWorldInvariants(t, m.world)
}

func TestRestoreDropsDeadAdoptsNew(t *testing.T) {
	m, backend := newTestManager(t, twoRegionConfig(),
		testWindow(101, 10, 10), testWindow(102, 300, 10), testWindow(103, 700, 10))
	m.Do(ActionMove, 102, East)
	snap := m.Snapshot()

	// 103 died, 104 appeared since the snapshot was taken.
	backend.setWindows([]platform.Window{
		testWindow(101, 10, 10), testWindow(102, 300, 10), testWindow(104, 500, 300),
	})

	if err := m.Restore(&snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 102) {
		t.Fatalf("right: got %v, want [102]", got)
	}
	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101, 104) {
		t.Fatalf("left: got %v, want [101 104]", got)
	}
	if _, tracked := m.world.RegionOf[103]; tracked {
		t.Fatalf("dead window still tracked")
	}
	checkWorldInvariants(t, m.world)
}

func TestRebalanceRedistributesInOrder(t *testing.T) {
	m, _ := newTestManager(t, twoRegionConfig(),
		testWindow(101, 10, 10), testWindow(102, 300, 10),
		testWindow(103, 600, 10), testWindow(104, 800, 10))

	// Pile everything into the left region.
	m.Do(ActionMove, 103, West)
	m.Do(ActionMove, 104, West)
	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101, 102, 103, 104) {
		t.Fatalf("left before rebalance: got %v", got)
	}

	m.Rebalance()

	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101, 102) {
		t.Fatalf("left: got %v, want [101 102]", got)
	}
	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 103, 104) {
		t.Fatalf("right: got %v, want [103 104]", got)
	}
	checkWorldInvariants(t, m.world)
}

func TestReconcileDropsDeadAdoptsNew(t *testing.T) {
	m, _ := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10), testWindow(2, 600, 10))

	live := []platform.Window{testWindow(2, 600, 10), testWindow(3, 300, 300)}
	m.Reconcile(live)

	if got := memberIDs(regionNamed(t, m, 0, "main")); !sameIDs(got, 2, 3) {
		t.Fatalf("main: got %v, want [2 3]", got)
	}

	// A second pass over the same enumeration changes nothing.
	m.Reconcile(live)
	if got := memberIDs(regionNamed(t, m, 0, "main")); !sameIDs(got, 2, 3) {
		t.Fatalf("main after second reconcile: got %v", got)
	}
	checkWorldInvariants(t, m.world)
}

func TestDisplaysChangedKeepsMembership(t *testing.T) {
	m, _ := newTestManager(t, twoRegionConfig(),
		testWindow(101, 10, 10), testWindow(102, 300, 10), testWindow(103, 700, 10))
	m.Do(ActionMove, 102, East)

	m.DisplaysChanged()

	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 101) {
		t.Fatalf("left: got %v, want [101]", got)
	}
	if got := memberIDs(regionNamed(t, m, 0, "right")); !sameIDs(got, 102, 103) {
		t.Fatalf("right: got %v, want [102 103]", got)
	}
	checkWorldInvariants(t, m.world)
}

func TestApplyConfigSettingsOnly(t *testing.T) {
	m, backend := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10))

	next := oneRegionConfig()
	next.Margin = 16
	if err := m.ApplyConfig(next); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}

	// Same topology: membership survives, geometry follows the new margin.
	if got := memberIDs(regionNamed(t, m, 0, "main")); !sameIDs(got, 1) {
		t.Fatalf("main: got %v, want [1]", got)
	}
	frame, _ := backend.frameOf(1)
	if want := (geometry.Rect{X: 16, Y: 16, Width: 968, Height: 468}); frame != want {
		t.Fatalf("frame: got %+v, want %+v", frame, want)
	}
}

func TestApplyConfigTopologyChangeReinitializes(t *testing.T) {
	m, _ := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10))

	if err := m.ApplyConfig(twoRegionConfig()); err != nil {
		t.Fatalf("ApplyConfig: %v", err)
	}

	// The old region is gone; the window lands in the new default.
	if got := memberIDs(regionNamed(t, m, 0, "left")); !sameIDs(got, 1) {
		t.Fatalf("left: got %v, want [1]", got)
	}
	if m.world.Region(RegionRef{Display: 0, Name: "main"}) != nil {
		t.Fatalf("stale region survived the topology change")
	}
	checkWorldInvariants(t, m.world)
}

func TestStatusDecoratesFromHost(t *testing.T) {
	m, _ := newTestManager(t, oneRegionConfig(), testWindow(1, 10, 10), testWindow(2, 600, 10))
	m.WindowFocused(1)

	st := m.Status()

	if len(st.Displays) != 1 || len(st.Displays[0].Regions) != 1 {
		t.Fatalf("status shape: %+v", st)
	}
	region := st.Displays[0].Regions[0]
	if region.Name != "main" || len(region.Windows) != 2 {
		t.Fatalf("region status: %+v", region)
	}
	if region.Windows[0].Title != "term" {
		t.Fatalf("title: got %q, want %q", region.Windows[0].Title, "term")
	}
	if st.Focused != 1 {
		t.Fatalf("focused: got %d, want 1", st.Focused)
	}
}
