package mcp

import "github.com/1broseidon/zonetile/internal/layout"

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct{}

// GetLayoutOutput is the output for the get_layout tool.
type GetLayoutOutput struct {
	Displays []layout.DisplayStatus `json:"displays"`
	Focused  uint32                 `json:"focused,omitempty"`
	Dragging uint32                 `json:"dragging,omitempty"`
}

// DoActionInput is the input for the do_action tool.
type DoActionInput struct {
	Action    string `json:"action" jsonschema:"required,The action to perform: move, focus or swap"`
	Direction string `json:"direction" jsonschema:"required,The direction: north, south, east or west"`
	Window    uint32 `json:"window,omitempty" jsonschema:"Target window id. Omit or 0 to act on the focused window."`
}

// DoActionOutput is the output for the do_action tool.
type DoActionOutput struct {
	Action    string `json:"action"`
	Direction string `json:"direction"`
	Window    uint32 `json:"window,omitempty"`
}

// RebalanceInput is the input for the rebalance tool.
type RebalanceInput struct{}

// RebalanceOutput is the output for the rebalance tool.
type RebalanceOutput struct {
	Rebalanced bool `json:"rebalanced"`
}

// SaveLayoutInput is the input for the save_layout tool.
type SaveLayoutInput struct {
	Name string `json:"name,omitempty" jsonschema:"Layout name to save under (default: default)"`
}

// SaveLayoutOutput is the output for the save_layout tool.
type SaveLayoutOutput struct {
	Layout string `json:"layout"`
}

// RestoreLayoutInput is the input for the restore_layout tool.
type RestoreLayoutInput struct {
	Name string `json:"name,omitempty" jsonschema:"Layout name to restore (default: default)"`
}

// RestoreLayoutOutput is the output for the restore_layout tool.
type RestoreLayoutOutput struct {
	Layout string `json:"layout"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []string `json:"layouts"`
}
