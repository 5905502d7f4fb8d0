//go:build darwin

package injector

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

static void postUnicodeKeyEvent(UniChar ch, bool keyDown) {
	CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
	CGEventRef event = CGEventCreateKeyboardEvent(source, 0, keyDown);
	CGEventKeyboardSetUnicodeString(event, 1, &ch);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
	CFRelease(source);
}

static void postKeycodeEvent(CGKeyCode keycode, bool keyDown) {
	CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
	CGEventRef event = CGEventCreateKeyboardEvent(source, keycode, keyDown);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
	CFRelease(source);
}
*/
import "C"

// backspaceKeycode is the macOS virtual keycode for the delete/backspace
// key, matching the literal value the source posts via Quartz.
const backspaceKeycode = 51

// QuartzEmitter posts synthetic keystrokes via the macOS Quartz Event
// Services HID tap — CGEventCreateKeyboardEvent / CGEventKeyboardSetUnicodeString
// / CGEventPost — the same calls the reference implementation performs
// through PyObjC.
type QuartzEmitter struct{}

// NewQuartzEmitter creates a KeyEmitter backed by CGEventPost.
func NewQuartzEmitter() *QuartzEmitter {
	return &QuartzEmitter{}
}

// TypeRune posts a key-down/key-up pair carrying r as a Unicode string
// override, per §6's "one key-down/up pair per code point" contract.
func (q *QuartzEmitter) TypeRune(r rune) error {
	ch := C.UniChar(r)
	C.postUnicodeKeyEvent(ch, true)
	C.postUnicodeKeyEvent(ch, false)
	return nil
}

// Backspace posts the platform backspace keycode down/up pair.
func (q *QuartzEmitter) Backspace() error {
	C.postKeycodeEvent(C.CGKeyCode(backspaceKeycode), true)
	C.postKeycodeEvent(C.CGKeyCode(backspaceKeycode), false)
	return nil
}
