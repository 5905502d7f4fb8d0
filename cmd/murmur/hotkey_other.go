//go:build !linux

package main

import (
	"fmt"

	"github.com/hammamikhairi/murmur/internal/hotkey"
	"github.com/hammamikhairi/murmur/internal/logger"
)

func newHotkeyListener(name string, log *logger.Logger) (hotkey.Listener, error) {
	return nil, fmt.Errorf("hotkey: no wired backend for this platform")
}
