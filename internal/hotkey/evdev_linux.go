//go:build linux

package hotkey

import (
	"fmt"
	"sync"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/hammamikhairi/murmur/internal/logger"
)

// EvdevListener watches every /dev/input/event* device reporting EV_KEY
// for a configured keycode and posts a toggle event on key-down, the way
// golang-evdev is used for global keyboard capture elsewhere in this
// domain.
type EvdevListener struct {
	ch      chan struct{}
	log     *logger.Logger
	keycode uint16

	mu      sync.Mutex
	devices []*evdev.InputDevice
	closed  bool
}

// NewEvdevListener opens every readable input device and starts watching
// for keycode presses.
func NewEvdevListener(keycode uint16, log *logger.Logger) (*EvdevListener, error) {
	paths, err := evdev.ListInputDevices()
	if err != nil {
		return nil, fmt.Errorf("hotkey: list input devices: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("hotkey: no input devices found")
	}

	l := &EvdevListener{
		ch:      make(chan struct{}, 1),
		log:     log,
		keycode: keycode,
	}

	for _, dev := range paths {
		if !supportsKey(dev, keycode) {
			continue
		}
		l.devices = append(l.devices, dev)
		go l.watch(dev)
	}

	if len(l.devices) == 0 {
		return nil, fmt.Errorf("hotkey: no device reports keycode %d", keycode)
	}

	return l, nil
}

func supportsKey(dev *evdev.InputDevice, keycode uint16) bool {
	caps, ok := dev.Capabilities[evdev.CapabilityType{Type: evdev.EV_KEY, Name: "EV_KEY"}]
	if !ok {
		return false
	}
	for _, code := range caps {
		if uint16(code.Code) == keycode {
			return true
		}
	}
	return false
}

// watch reads events from one device until it errors out (device
// unplugged) or the listener is closed.
func (l *EvdevListener) watch(dev *evdev.InputDevice) {
	for {
		event, err := dev.ReadOne()
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if !closed {
				l.log.Warn("hotkey: device read error: %v", err)
			}
			return
		}
		if event.Type != evdev.EV_KEY || uint16(event.Code) != l.keycode {
			continue
		}
		// Value 1 is key-down; debounce against auto-repeat (value 2)
		// here, at the driver level. The controller applies its own
		// toggle debounce on top.
		if event.Value != 1 {
			continue
		}
		select {
		case l.ch <- struct{}{}:
		default:
		}
	}
}

// Toggle returns the channel toggle events are posted to.
func (l *EvdevListener) Toggle() <-chan struct{} { return l.ch }

// Close stops watching all devices.
func (l *EvdevListener) Close() error {
	l.mu.Lock()
	l.closed = true
	devices := l.devices
	l.mu.Unlock()

	for _, dev := range devices {
		dev.File.Close()
	}
	return nil
}
