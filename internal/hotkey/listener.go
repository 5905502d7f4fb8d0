// Package hotkey provides the global hotkey listener port and its
// platform backends. The listener is an external collaborator: it must
// never run application logic inline, only enqueue toggle events for the
// controller to serialize.
package hotkey

// Listener posts a value on its channel each time the configured hotkey
// is pressed. Implementations must debounce at the driver level only if
// the underlying device fires duplicate press events (e.g. modifier
// auto-repeat); the controller performs its own toggle debounce on top.
type Listener interface {
	Toggle() <-chan struct{}
	Close() error
}

// Manual is a Listener driven entirely by calling Fire — cmd/murmur falls
// back to it whenever the platform hotkey listener cannot be created.
type Manual struct {
	ch chan struct{}
}

// NewManual creates a manually-driven listener.
func NewManual() *Manual {
	return &Manual{ch: make(chan struct{}, 1)}
}

// Toggle returns the channel toggle events are posted to.
func (m *Manual) Toggle() <-chan struct{} { return m.ch }

// Fire posts one toggle event, dropping it if the channel is full —
// mirroring the "dispatch immediately, never block the listener" rule.
func (m *Manual) Fire() {
	select {
	case m.ch <- struct{}{}:
	default:
	}
}

// Close releases resources. A no-op for Manual.
func (m *Manual) Close() error { return nil }
