//go:build linux

package main

import (
	"fmt"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/hammamikhairi/murmur/internal/hotkey"
	"github.com/hammamikhairi/murmur/internal/logger"
)

// keycodeByName maps the configured hotkey aliases to evdev keycodes,
// mirroring the original's hotkey alias table.
var keycodeByName = map[string]uint16{
	"alt_r":     evdev.KEY_RIGHTALT,
	"alt_l":     evdev.KEY_LEFTALT,
	"caps_lock": evdev.KEY_CAPSLOCK,
	"f8":        evdev.KEY_F8,
	"f9":        evdev.KEY_F9,
	"f10":       evdev.KEY_F10,
}

func newHotkeyListener(name string, log *logger.Logger) (hotkey.Listener, error) {
	code, ok := keycodeByName[name]
	if !ok {
		return nil, fmt.Errorf("hotkey: unknown hotkey %q", name)
	}
	return hotkey.NewEvdevListener(code, log)
}
