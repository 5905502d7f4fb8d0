//go:build !darwin

package injector

import "errors"

// ErrUnsupportedPlatform is returned by the stub emitter on platforms
// without a wired synthetic-HID backend.
var ErrUnsupportedPlatform = errors.New("injector: no keystroke backend for this platform")

// unsupportedEmitter keeps the package linkable and testable on any OS
// against a fake KeyEmitter, without claiming to type anything for real.
type unsupportedEmitter struct{}

// NewQuartzEmitter returns a KeyEmitter that always fails; only the
// darwin build provides a working Quartz-backed implementation.
func NewQuartzEmitter() KeyEmitter {
	return unsupportedEmitter{}
}

func (unsupportedEmitter) TypeRune(rune) error { return ErrUnsupportedPlatform }
func (unsupportedEmitter) Backspace() error    { return ErrUnsupportedPlatform }
