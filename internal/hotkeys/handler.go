// Package hotkeys grabs global key bindings on the X11 root window and
// dispatches them to layout actions.
package hotkeys

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/1broseidon/zonetile/internal/layout"
	"github.com/1broseidon/zonetile/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Callbacks holds the non-directional actions the daemon wires in. A nil
// field disables the corresponding binding.
type Callbacks struct {
	Rebalance     func()
	SaveLayout    func()
	RestoreLayout func()
}

// Handler manages global keyboard shortcuts.
type Handler struct {
	xu        *xgbutil.XUtil
	root      xproto.Window
	manager   *layout.Manager
	callbacks Callbacks
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler over the backend's X connection.
func NewHandler(backend platform.Backend, manager *layout.Manager, callbacks Callbacks) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:        xu,
		root:      root,
		manager:   manager,
		callbacks: callbacks,
	}
}

// Bind grabs every configured binding. Bindings are independent: an empty
// key sequence disables its action, and a failed grab (the key is owned by
// another client) logs a warning and the rest proceed.
func (h *Handler) Bind(bindings map[string]string) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys require an X11 backend")
	}

	for action, sequence := range bindings {
		if sequence == "" {
			continue
		}
		callback, err := h.callbackFor(action)
		if err != nil {
			log.Printf("Warning: skipping hotkey %s: %v", action, err)
			continue
		}
		if callback == nil {
			continue
		}
		if err := h.bindFunc(sequence, callback); err != nil {
			log.Printf("Warning: failed to grab %s for %s: %v", sequence, action, err)
		}
	}
	return nil
}

// callbackFor maps a config action name to its handler. Directional names
// are verb_direction pairs; the rest come from Callbacks.
func (h *Handler) callbackFor(action string) (func(), error) {
	switch action {
	case "rebalance":
		return h.callbacks.Rebalance, nil
	case "save_layout":
		return h.callbacks.SaveLayout, nil
	case "restore_layout":
		return h.callbacks.RestoreLayout, nil
	}

	verb, dirName, ok := strings.Cut(action, "_")
	if !ok {
		return nil, fmt.Errorf("unknown action %q", action)
	}
	act, err := layout.ParseAction(verb)
	if err != nil {
		return nil, err
	}
	dir, err := layout.ParseDirection(dirName)
	if err != nil {
		return nil, err
	}

	// Window 0 targets whatever the host says is focused.
	return func() {
		h.manager.Do(act, 0, dir)
	}, nil
}

func (h *Handler) bindFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
