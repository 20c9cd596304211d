package hotkeys

import (
	"testing"

	"github.com/1broseidon/zonetile/internal/config"
)

func TestCallbackForAcceptsAllConfigActions(t *testing.T) {
	h := &Handler{callbacks: Callbacks{
		Rebalance:     func() {},
		SaveLayout:    func() {},
		RestoreLayout: func() {},
	}}

	for _, action := range config.HotkeyActions() {
		callback, err := h.callbackFor(action)
		if err != nil {
			t.Errorf("callbackFor(%q) error = %v", action, err)
			continue
		}
		if callback == nil {
			t.Errorf("callbackFor(%q) returned nil callback", action)
		}
	}
}

func TestCallbackForNamedActions(t *testing.T) {
	var got string
	h := &Handler{callbacks: Callbacks{
		Rebalance:     func() { got = "rebalance" },
		SaveLayout:    func() { got = "save" },
		RestoreLayout: func() { got = "restore" },
	}}

	tests := []struct {
		action string
		want   string
	}{
		{"rebalance", "rebalance"},
		{"save_layout", "save"},
		{"restore_layout", "restore"},
	}
	for _, tt := range tests {
		callback, err := h.callbackFor(tt.action)
		if err != nil {
			t.Fatalf("callbackFor(%q) error = %v", tt.action, err)
		}
		callback()
		if got != tt.want {
			t.Errorf("callbackFor(%q) invoked %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestCallbackForRejectsUnknownActions(t *testing.T) {
	h := &Handler{}
	for _, action := range []string{"tile", "move_up", "focus", "swap_", "grow_east"} {
		if _, err := h.callbackFor(action); err == nil {
			t.Errorf("callbackFor(%q) error = nil, want parse failure", action)
		}
	}
}
