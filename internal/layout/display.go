package layout

import "github.com/1broseidon/zonetile/internal/geometry"

// Display owns the regions configured for one physical screen. Region
// membership is static between re-inits; only window contents change.
type Display struct {
	ID      int
	Name    string
	Box     geometry.Rect // usable area, struts excluded
	Regions map[string]*Region

	order []string // configuration order, for deterministic scans
}

// NewDisplay creates a display with no regions.
func NewDisplay(id int, name string, box geometry.Rect) *Display {
	return &Display{
		ID:      id,
		Name:    name,
		Box:     box,
		Regions: make(map[string]*Region),
	}
}

// AddRegion registers a region under its name, preserving insertion order.
func (d *Display) AddRegion(r *Region) {
	if _, ok := d.Regions[r.Name]; !ok {
		d.order = append(d.order, r.Name)
	}
	d.Regions[r.Name] = r
}

// Ordered returns the regions in configuration order.
func (d *Display) Ordered() []*Region {
	out := make([]*Region, 0, len(d.order))
	for _, name := range d.order {
		if r, ok := d.Regions[name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// DefaultRegion returns the region marked default, falling back to the
// first configured one. Nil when the display has no regions.
func (d *Display) DefaultRegion() *Region {
	for _, r := range d.Ordered() {
		if r.Default {
			return r
		}
	}
	if len(d.order) > 0 {
		return d.Regions[d.order[0]]
	}
	return nil
}

// Distribute reconciles every owned region. Used at startup and whenever
// the display's configuration is (re)applied.
func (d *Display) Distribute(world *World) {
	for _, r := range d.Ordered() {
		r.reconcileWindows(world)
	}
}
