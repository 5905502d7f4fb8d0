// Package injector reconciles the externally visible typed text with
// each new transcription hypothesis by emitting the minimum-cost sequence
// of backspaces and character keystrokes, throttled and budget-bounded.
package injector

import (
	"sync"
	"time"

	"github.com/hammamikhairi/murmur/internal/logger"
)

// KeyEmitter is the external synthetic-HID collaborator. Implementations
// post one OS-level keyboard event per call.
type KeyEmitter interface {
	TypeRune(r rune) error
	Backspace() error
}

// Option configures an Injector.
type Option func(*Injector)

// WithMaxUpdatesPerSec sets the update throttle.
func WithMaxUpdatesPerSec(n float64) Option {
	return func(i *Injector) { i.maxUpdatesPerSec = n }
}

// WithMaxBackspaceChars sets the backspace budget.
func WithMaxBackspaceChars(n int) Option {
	return func(i *Injector) { i.maxBackspaceChars = n }
}

// WithKeystrokeDelay sets the inter-character pacing delay.
func WithKeystrokeDelay(d time.Duration) Option {
	return func(i *Injector) { i.keystrokeDelay = d }
}

// WithBackspaceDelay sets the inter-backspace pacing delay.
func WithBackspaceDelay(d time.Duration) Option {
	return func(i *Injector) { i.backspaceDelay = d }
}

// Injector holds the injector's belief about currently-typed text and
// emits the diff against each new target text. The lock is held across
// the entire update, including keystroke emission — this is required to
// serialize keystroke streams against a contended injector; concurrent
// emissions would interleave backspaces and characters.
type Injector struct {
	mu sync.Mutex

	emitter KeyEmitter
	log     *logger.Logger
	now     func() time.Time

	maxUpdatesPerSec  float64
	maxBackspaceChars int
	keystrokeDelay    time.Duration
	backspaceDelay    time.Duration

	typedText        string
	lastUpdateTime   time.Time
}

// New creates an Injector posting keystrokes through emitter.
func New(emitter KeyEmitter, log *logger.Logger, opts ...Option) *Injector {
	i := &Injector{
		emitter:           emitter,
		log:               log,
		now:               time.Now,
		maxUpdatesPerSec:  4,
		maxBackspaceChars: 30,
		keystrokeDelay:    2 * time.Millisecond,
		backspaceDelay:    1 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Reset zeroes all state. Called at the start of every session.
func (i *Injector) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.typedText = ""
	i.lastUpdateTime = time.Time{}
}

// TypedText returns the injector's current belief about visible text.
func (i *Injector) TypedText() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.typedText
}

// Update reconciles typed text with newText, emitting the minimum-cost
// diff. Returns false (no events emitted, state unchanged) if newText is
// empty, the update is throttled, newText equals the current typed text,
// or the edit would exceed the backspace budget. A forced update bypasses
// throttling but still respects the backspace budget: the final pass
// must either commit the refusal — leaving an older transcript visible
// and logging — or be retried with a wider budget by the caller. This
// implementation chooses to always respect the budget, even when forced,
// so typed_text never desynchronizes from what was actually emitted.
func (i *Injector) Update(newText string, force bool) bool {
	if newText == "" {
		return false
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if !force && !i.lastUpdateTime.IsZero() {
		minInterval := time.Duration(float64(time.Second) / i.maxUpdatesPerSec)
		if now.Sub(i.lastUpdateTime) < minInterval {
			return false
		}
	}

	if newText == i.typedText {
		return false
	}

	typedRunes := []rune(i.typedText)
	newRunes := []rune(newText)

	var prefixKeep, oldTail, newTail []rune
	if len(typedRunes) > i.maxBackspaceChars {
		prefixKeep = typedRunes[:len(typedRunes)-i.maxBackspaceChars]
		if !runesHavePrefix(newRunes, prefixKeep) {
			i.log.Warn("injector: update exceeds backspace budget, refused")
			return false
		}
		oldTail = typedRunes[len(prefixKeep):]
		newTail = newRunes[len(prefixKeep):]
	} else {
		oldTail = typedRunes
		newTail = newRunes
	}

	commonLen := 0
	for commonLen < len(oldTail) && commonLen < len(newTail) && oldTail[commonLen] == newTail[commonLen] {
		commonLen++
	}

	for j := len(oldTail) - 1; j >= commonLen; j-- {
		if err := i.emitter.Backspace(); err != nil {
			i.log.Error("injector: backspace failed: %v", err)
		}
		time.Sleep(i.backspaceDelay)
	}

	for _, r := range newTail[commonLen:] {
		if err := i.emitter.TypeRune(r); err != nil {
			i.log.Error("injector: type rune failed: %v", err)
		}
		time.Sleep(i.keystrokeDelay)
	}

	i.typedText = string(prefixKeep) + string(newTail)
	i.lastUpdateTime = now
	return true
}

func runesHavePrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
