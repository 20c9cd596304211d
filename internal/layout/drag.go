package layout

import (
	"sync"
	"time"

	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
)

// DefaultSettle is the drag debounce quiet period.
const DefaultSettle = 250 * time.Millisecond

// DragMonitor coalesces a burst of drag samples into a single settle
// callback. The first sample of a burst fires onStart immediately, every
// sample re-arms the timer, and onSettle runs exactly once per burst after
// the quiet period, with the last window and point seen.
type DragMonitor struct {
	mu      sync.Mutex
	quiet   time.Duration
	timer   *time.Timer
	gen     int // re-arm generation; a stale timer firing late bails out
	active  bool
	lastWin platform.WindowID
	lastPt  geometry.Point

	onStart  func(platform.WindowID)
	onSettle func(platform.WindowID, geometry.Point)
}

// NewDragMonitor creates a monitor. A non-positive quiet period falls back
// to DefaultSettle.
func NewDragMonitor(quiet time.Duration, onStart func(platform.WindowID), onSettle func(platform.WindowID, geometry.Point)) *DragMonitor {
	if quiet <= 0 {
		quiet = DefaultSettle
	}
	return &DragMonitor{quiet: quiet, onStart: onStart, onSettle: onSettle}
}

// SetQuiet adjusts the quiet period for subsequent samples.
func (d *DragMonitor) SetQuiet(quiet time.Duration) {
	if quiet <= 0 {
		return
	}
	d.mu.Lock()
	d.quiet = quiet
	d.mu.Unlock()
}

// Sample records one drag event, restarting the settle timer.
func (d *DragMonitor) Sample(win platform.WindowID, pt geometry.Point) {
	d.mu.Lock()
	first := !d.active
	d.active = true
	d.lastWin = win
	d.lastPt = pt
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.settle(gen) })
	d.mu.Unlock()

	if first && d.onStart != nil {
		d.onStart(win)
	}
}

// Active reports whether a burst is currently live.
func (d *DragMonitor) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Cancel drops any in-flight burst without settling.
func (d *DragMonitor) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.active = false
}

func (d *DragMonitor) settle(gen int) {
	d.mu.Lock()
	if gen != d.gen || !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	win := d.lastWin
	pt := d.lastPt
	d.mu.Unlock()

	if d.onSettle != nil {
		d.onSettle(win, pt)
	}
}
