package daemon

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/zonetile/internal/actionlog"
	"github.com/1broseidon/zonetile/internal/layout"
	"github.com/1broseidon/zonetile/internal/state"
)

// AutoRestoreSnapshot picks the snapshot to seed the layout with at startup:
// the saved default layout if one exists, otherwise whatever the previous
// daemon wrote on shutdown. Returns nil when neither is usable; a fresh
// distribution is the fallback, not an error.
func AutoRestoreSnapshot(store state.Store, logger *slog.Logger) *state.Snapshot {
	if logger == nil {
		logger = slog.Default()
	}

	for _, key := range []string{state.DefaultKey, state.LastKey} {
		data, err := store.Get(key)
		if errors.Is(err, state.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Warn("failed to read layout", "layout", key, "error", err)
			continue
		}
		snap, err := state.DecodeSnapshot(data)
		if err != nil {
			logger.Warn("failed to parse layout", "layout", key, "error", err)
			continue
		}
		logger.Info("restoring layout", "layout", key, "saved_at", snap.SavedAt)
		return snap
	}
	return nil
}

// LogAction records a completed layout action. Wire it as the manager's
// OnAction observer.
func LogAction(lg *actionlog.Logger, ev layout.ActionEvent) {
	details := map[string]interface{}{
		"from": refString(ev.From),
		"to":   refString(ev.To),
	}

	var action actionlog.Action
	if ev.Dragged {
		action = actionlog.ActionDrag
	} else {
		details["direction"] = ev.Direction.String()
		switch ev.Action {
		case layout.ActionMove:
			action = actionlog.ActionMove
		case layout.ActionFocus:
			action = actionlog.ActionFocus
		case layout.ActionSwap:
			action = actionlog.ActionSwap
		default:
			return
		}
	}

	lg.Log(action, uint32(ev.Window), details)
}

func refString(ref layout.RegionRef) string {
	return fmt.Sprintf("%d:%s", ref.Display, ref.Name)
}
