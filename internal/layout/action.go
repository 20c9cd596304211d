package layout

import "fmt"

// Action is a directional operation on a window.
type Action int

const (
	// ActionMove relocates the window one step in the direction.
	ActionMove Action = iota
	// ActionFocus shifts input focus one step in the direction.
	ActionFocus
	// ActionSwap exchanges the window with the one in the direction.
	ActionSwap
)

// String returns the wire name of the action.
func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionFocus:
		return "focus"
	case ActionSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// ParseAction maps a wire name to an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "move":
		return ActionMove, nil
	case "focus":
		return ActionFocus, nil
	case "swap":
		return ActionSwap, nil
	default:
		return 0, fmt.Errorf("unknown action %q (want move, focus or swap)", s)
	}
}

// Direction is a cardinal layout direction.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// ParseDirection maps a wire name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "north":
		return North, nil
	case "south":
		return South, nil
	case "east":
		return East, nil
	case "west":
		return West, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want north, south, east or west)", s)
	}
}

// Vertical reports whether the direction runs along the vertical axis.
func (d Direction) Vertical() bool {
	return d == North || d == South
}

// IndexDelta returns the window-order step for the direction: north and
// west walk toward slot 0, south and east away from it.
func (d Direction) IndexDelta() int {
	if d == North || d == West {
		return -1
	}
	return 1
}

// Related returns the direction paired with d in the almost-adjacent
// fallback. The pairs share an index delta: east with south, west with
// north.
func (d Direction) Related() Direction {
	switch d {
	case East:
		return South
	case South:
		return East
	case West:
		return North
	default:
		return West
	}
}
