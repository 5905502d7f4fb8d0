package injector

import (
	"testing"
	"time"

	"github.com/hammamikhairi/murmur/internal/logger"
)

// steppingClock returns a clock that advances one second per reading, so
// consecutive updates in a test are never throttled.
func steppingClock() func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// recordingEmitter captures emitted keystrokes for assertions.
type recordingEmitter struct {
	typed      []rune
	backspaces int
}

func (e *recordingEmitter) TypeRune(r rune) error {
	e.typed = append(e.typed, r)
	return nil
}

func (e *recordingEmitter) Backspace() error {
	e.backspaces++
	return nil
}

func newTestInjector(e *recordingEmitter) *Injector {
	log := logger.New(logger.LevelOff, nil)
	inj := New(e, log,
		WithMaxUpdatesPerSec(1000),
		WithMaxBackspaceChars(30),
		WithKeystrokeDelay(0),
		WithBackspaceDelay(0))
	inj.now = steppingClock()
	return inj
}

func TestInjectorTypesFromEmpty(t *testing.T) {
	e := &recordingEmitter{}
	inj := newTestInjector(e)

	if !inj.Update("hello", false) {
		t.Fatal("expected update to succeed")
	}
	if string(e.typed) != "hello" {
		t.Fatalf("expected 'hello' typed, got %q", string(e.typed))
	}
	if e.backspaces != 0 {
		t.Fatalf("expected 0 backspaces, got %d", e.backspaces)
	}
	if inj.TypedText() != "hello" {
		t.Fatalf("typed_text = %q, want 'hello'", inj.TypedText())
	}
}

func TestInjectorDiffEmitsMinimalEdits(t *testing.T) {
	e := &recordingEmitter{}
	inj := newTestInjector(e)

	inj.Update("hello", false)
	e.typed = nil
	e.backspaces = 0

	if !inj.Update("help", false) {
		t.Fatal("expected second update to succeed")
	}
	if e.backspaces != 2 {
		t.Fatalf("expected 2 backspaces, got %d", e.backspaces)
	}
	if string(e.typed) != "p" {
		t.Fatalf("expected 'p' typed, got %q", string(e.typed))
	}
	if inj.TypedText() != "help" {
		t.Fatalf("typed_text = %q, want 'help'", inj.TypedText())
	}
}

func TestInjectorRepeatedUpdateIsNoop(t *testing.T) {
	e := &recordingEmitter{}
	inj := newTestInjector(e)

	inj.Update("hello", false)
	e.typed = nil
	e.backspaces = 0

	if inj.Update("hello", false) {
		t.Fatal("expected repeated identical update to return false")
	}
	if len(e.typed) != 0 || e.backspaces != 0 {
		t.Fatal("expected no events emitted for a no-op update")
	}
}

func TestInjectorBackspaceBudget(t *testing.T) {
	e := &recordingEmitter{}
	log := logger.New(logger.LevelOff, nil)
	inj := New(e, log,
		WithMaxUpdatesPerSec(1000),
		WithMaxBackspaceChars(5),
		WithKeystrokeDelay(0),
		WithBackspaceDelay(0))
	inj.now = steppingClock()

	inj.Update("abcdefghij", false)
	e.typed = nil
	e.backspaces = 0

	if !inj.Update("abcdeXYZ", false) {
		t.Fatal("expected update within budget to succeed")
	}
	if e.backspaces != 5 {
		t.Fatalf("expected 5 backspaces, got %d", e.backspaces)
	}
	if string(e.typed) != "XYZ" {
		t.Fatalf("expected 'XYZ' typed, got %q", string(e.typed))
	}

	e.typed = nil
	e.backspaces = 0
	if inj.Update("XYZ", false) {
		t.Fatal("expected update exceeding budget to be refused")
	}
	if len(e.typed) != 0 || e.backspaces != 0 {
		t.Fatal("expected no events emitted for a refused update")
	}
	if inj.TypedText() != "abcdeXYZ" {
		t.Fatalf("expected state unchanged after refusal, got %q", inj.TypedText())
	}
}

func TestInjectorThrottle(t *testing.T) {
	e := &recordingEmitter{}
	log := logger.New(logger.LevelOff, nil)
	inj := New(e, log, WithMaxUpdatesPerSec(1), WithKeystrokeDelay(0), WithBackspaceDelay(0))

	if !inj.Update("hello", false) {
		t.Fatal("expected first update to succeed")
	}
	if inj.Update("hello world", false) {
		t.Fatal("expected immediate second update to be throttled")
	}
}

func TestInjectorForceBypassesThrottle(t *testing.T) {
	e := &recordingEmitter{}
	log := logger.New(logger.LevelOff, nil)
	inj := New(e, log, WithMaxUpdatesPerSec(1), WithKeystrokeDelay(0), WithBackspaceDelay(0))

	inj.Update("hello", false)
	if !inj.Update("hello world", true) {
		t.Fatal("expected forced update to bypass throttle")
	}
}

func TestInjectorReset(t *testing.T) {
	e := &recordingEmitter{}
	inj := newTestInjector(e)
	inj.Update("hello", false)
	inj.Reset()

	if inj.TypedText() != "" {
		t.Fatalf("expected empty typed_text after reset, got %q", inj.TypedText())
	}
}

func TestInjectorEmptyTextNoop(t *testing.T) {
	e := &recordingEmitter{}
	inj := newTestInjector(e)
	if inj.Update("", false) {
		t.Fatal("expected empty text update to return false")
	}
}
