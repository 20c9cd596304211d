package layout

import (
	"github.com/1broseidon/zonetile/internal/geometry"
	"github.com/1broseidon/zonetile/internal/platform"
)

// WindowStatus is one tracked window as reported over IPC.
type WindowStatus struct {
	ID    uint32        `json:"id"`
	Title string        `json:"title,omitempty"`
	AppID string        `json:"app_id,omitempty"`
	Box   geometry.Rect `json:"box"`
}

// RegionStatus is one region with its ordered members.
type RegionStatus struct {
	Name     string         `json:"name"`
	Vertical bool           `json:"vertical"`
	Default  bool           `json:"default,omitempty"`
	Box      geometry.Rect  `json:"box"`
	Windows  []WindowStatus `json:"windows"`
}

// DisplayStatus is one display with its regions in configuration order.
type DisplayStatus struct {
	ID      int            `json:"display"`
	Name    string         `json:"name,omitempty"`
	Box     geometry.Rect  `json:"box"`
	Regions []RegionStatus `json:"regions"`
}

// Status is the full layout state for status queries and MCP tools.
type Status struct {
	Displays []DisplayStatus `json:"displays"`
	Focused  uint32          `json:"focused,omitempty"`
	Dragging uint32          `json:"dragging,omitempty"`
}

// Status reports the current layout, decorated with window titles and app
// ids from a fresh host enumeration when one is available.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	liveByID := make(map[platform.WindowID]platform.Window)
	if windows, err := m.world.Backend.Windows(); err == nil {
		for _, win := range windows {
			liveByID[win.ID] = win
		}
	}

	st := Status{
		Focused:  uint32(m.world.Focused),
		Dragging: uint32(m.world.Dragging),
	}
	for _, d := range m.orderedDisplays() {
		ds := DisplayStatus{ID: d.ID, Name: d.Name, Box: d.Box}
		for _, region := range d.Ordered() {
			rs := RegionStatus{
				Name:     region.Name,
				Vertical: region.Vertical,
				Default:  region.Default,
				Box:      region.Box,
				Windows:  make([]WindowStatus, 0, len(region.windows)),
			}
			for _, win := range region.windows {
				ws := WindowStatus{ID: uint32(win.ID), Box: win.Box()}
				if live, ok := liveByID[win.ID]; ok {
					ws.Title = live.Title
					ws.AppID = live.AppID
				}
				rs.Windows = append(rs.Windows, ws)
			}
			ds.Regions = append(ds.Regions, rs)
		}
		st.Displays = append(st.Displays, ds)
	}
	return st
}
