// Package geometry implements the rectangle math used by region layout:
// axis partitioning with margins, adjacency seam corrections, containment
// and distance tests. Everything here is a pure value computation.
package geometry

import "math"

// Point is a screen coordinate. Origin is top-left, y grows downward.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is a screen rectangle. Also used as a delta in Adjust, where the
// fields are offsets rather than absolute values.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Sides marks the cardinal directions on which a region touches another
// region of the same display.
type Sides struct {
	North bool
	South bool
	East  bool
	West  bool
}

// Side is a half-plane position relative to a rectangle's primary axis.
type Side int

const (
	Before Side = iota
	After
)

func (s Side) String() string {
	if s == Before {
		return "before"
	}
	return "after"
}

// TopLeft returns the rectangle's origin corner.
func (r Rect) TopLeft() Point {
	return Point{X: r.X, Y: r.Y}
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Inset shrinks the rectangle by n on every side. Negative n grows it.
func (r Rect) Inset(n int) Rect {
	return Rect{
		X:      r.X + n,
		Y:      r.Y + n,
		Width:  r.Width - 2*n,
		Height: r.Height - 2*n,
	}
}

// Adjust applies a delta rectangle (per-field offsets) to r.
func (r Rect) Adjust(d Rect) Rect {
	return Rect{
		X:      r.X + d.X,
		Y:      r.Y + d.Y,
		Width:  r.Width + d.Width,
		Height: r.Height + d.Height,
	}
}

// Contains reports whether pt lies strictly inside r. Boundary points are
// excluded so hit-testing against SubRegions output never matches a shared
// edge.
func (r Rect) Contains(pt Point) bool {
	return pt.X > r.X && pt.X < r.X+r.Width &&
		pt.Y > r.Y && pt.Y < r.Y+r.Height
}

// IsZero reports whether r is the zero rectangle.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// BeforeOrAfter reports which half of box pt falls in along the primary
// axis: the vertical axis when vertical is true, the horizontal otherwise.
// Points at or past the midpoint count as After.
func BeforeOrAfter(pt Point, box Rect, vertical bool) Side {
	if vertical {
		if pt.Y < box.Y+box.Height/2 {
			return Before
		}
		return After
	}
	if pt.X < box.X+box.Width/2 {
		return Before
	}
	return After
}

// Offset returns the delta that narrows a region's box on every edge that
// touches an interior neighbor, by a quarter of the margin per edge. Outer
// screen edges keep the full box. Corrections for separate directions stack.
func Offset(adj Sides, margin int) Rect {
	var d Rect
	q := margin / 4
	if adj.North {
		d.Y += q
		d.Height -= q
	}
	if adj.South {
		d.Height -= q
	}
	if adj.West {
		d.X += q
		d.Width -= q
	}
	if adj.East {
		d.Width -= q
	}
	return d
}

// SubRegions partitions box into count rectangles along its primary axis:
// top-to-bottom when vertical, left-to-right otherwise. The box is first
// corrected by Offset for interior seams. Slice boundaries use exact integer
// partition, so ignoring margin gutters the slices tile the box with no gaps
// or overlaps and share the full cross-axis extent. Each slice then loses
// half the margin on its leading primary edge and half the margin on both
// cross-axis edges. Returns nil when count <= 0. Deterministic: layout and
// pointer hit-testing rely on computing identical rectangles.
func SubRegions(box Rect, count int, vertical bool, adj Sides, margin int) []Rect {
	if count <= 0 {
		return nil
	}

	box = box.Adjust(Offset(adj, margin))
	half := margin / 2

	subs := make([]Rect, 0, count)
	if vertical {
		for i := 0; i < count; i++ {
			y0 := box.Y + i*box.Height/count
			y1 := box.Y + (i+1)*box.Height/count
			subs = append(subs, Rect{
				X:      box.X + half,
				Y:      y0 + half,
				Width:  box.Width - margin,
				Height: y1 - (y0 + half),
			})
		}
		return subs
	}

	for i := 0; i < count; i++ {
		x0 := box.X + i*box.Width/count
		x1 := box.X + (i+1)*box.Width/count
		subs = append(subs, Rect{
			X:      x0 + half,
			Y:      box.Y + half,
			Width:  x1 - (x0 + half),
			Height: box.Height - margin,
		})
	}
	return subs
}
