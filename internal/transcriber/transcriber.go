// Package transcriber drives the speech recognizer with a rolling prompt,
// cleans its hallucinations, and hosts the stability tracker.
package transcriber

import (
	"regexp"
	"strings"
	"sync"

	"github.com/hammamikhairi/murmur/internal/logger"
	"github.com/hammamikhairi/murmur/internal/stability"
)

// Recognizer is the external speech-recognition collaborator: given f32
// PCM samples and an optional initial prompt, it invokes onSegment once
// per recognized segment, in order. Implementations are assumed
// reentrant across disjoint invocations but are never called concurrently
// by this package.
type Recognizer interface {
	Recognize(pcm []float32, initialPrompt string, onSegment func(text string)) error
}

// junkPhrases are literal recognizer hallucinations stripped wherever
// they appear in cleaned output — silence/noise artifacts common to
// whisper-family recognizers on quiet audio.
var junkPhrases = []string{
	"(music)", "(Music)", "[Music]",
	"(silence)", "(Silence)",
	"Thank you.", "Thanks for watching!", "Subscribe",
	"[BLANK_AUDIO]", "(BLANK_AUDIO)",
}

// bracketAnnotation strips any bracketed annotation substring, e.g.
// "[inaudible]" or "[typing]".
var bracketAnnotation = regexp.MustCompile(`\[[^\]]*\]`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// clean applies the output-cleaning rules: strip bracketed annotations,
// remove known junk phrases, collapse whitespace, trim. Returns "" if
// nothing remains.
func clean(text string) string {
	text = bracketAnnotation.ReplaceAllString(text, "")
	for _, j := range junkPhrases {
		text = strings.ReplaceAll(text, j, "")
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithMinAudioSeconds sets the minimum audio duration required to invoke
// the recognizer at all.
func WithMinAudioSeconds(seconds float64) Option {
	return func(t *Transcriber) { t.minAudioSamples = int(seconds * 16000) }
}

// WithPromptMaxWords sets the rolling-prompt tail length.
func WithPromptMaxWords(n int) Option {
	return func(t *Transcriber) { t.promptMaxWords = n }
}

// WithUseInitialPrompt toggles whether the rolling prompt is sent at all.
func WithUseInitialPrompt(use bool) Option {
	return func(t *Transcriber) { t.useInitialPrompt = use }
}

// Transcriber owns a Recognizer and a stability.Tracker, and applies
// hallucination cleaning and the anti-echo clamp between them.
type Transcriber struct {
	mu sync.Mutex

	recognizer Recognizer
	tracker    *stability.Tracker
	log        *logger.Logger

	minAudioSamples  int
	promptMaxWords   int
	useInitialPrompt bool
}

// New creates a Transcriber wrapping the given recognizer and tracker.
func New(recognizer Recognizer, tracker *stability.Tracker, log *logger.Logger, opts ...Option) *Transcriber {
	t := &Transcriber{
		recognizer:       recognizer,
		tracker:          tracker,
		log:              log,
		minAudioSamples:  1600, // 0.1s at 16kHz
		promptMaxWords:   50,
		useInitialPrompt: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reset resets the underlying tracker. Called at the start of every
// session.
func (t *Transcriber) Reset() {
	t.tracker.Reset()
}

// ProcessAudio runs one recognizer pass over pcm and feeds the cleaned,
// anti-echo-clamped result to the stability tracker. Returns nil if pcm
// is too short or the recognizer call fails (a transient failure is
// logged, not propagated — the tracker still advances on the caller's
// next call).
func (t *Transcriber) ProcessAudio(pcm []float32, silenceDuration float64, isFinal bool) *stability.Result {
	if len(pcm) < t.minAudioSamples {
		return nil
	}

	prompt := t.buildPrompt()

	var segments []string
	err := t.recognizer.Recognize(pcm, prompt, func(text string) {
		segments = append(segments, text)
	})
	if err != nil {
		t.log.Error("transcriber: recognizer failed: %v", err)
		return nil
	}

	raw := strings.Join(segments, " ")
	cleaned := clean(raw)
	if prompt != "" {
		cleaned = clampEcho(cleaned, prompt)
	}

	result := t.tracker.Process(cleaned, silenceDuration, isFinal)
	return &result
}

// buildPrompt takes the last promptMaxWords of the tracker's committed
// text, or "" if prompting is disabled or nothing is committed yet.
func (t *Transcriber) buildPrompt() string {
	if !t.useInitialPrompt {
		return ""
	}
	committed := t.tracker.Committed()
	if committed == "" {
		return ""
	}
	words := strings.Fields(committed)
	if len(words) > t.promptMaxWords {
		words = words[len(words)-t.promptMaxWords:]
	}
	return strings.Join(words, " ")
}

// clampEcho strips a leading run of output tokens that echoes the tail of
// the prompt, up to 20 tokens — recognizers frequently regurgitate the
// prompt verbatim before continuing.
func clampEcho(output, prompt string) string {
	outputTokens := strings.Fields(output)
	promptTokens := strings.Fields(prompt)

	maxI := 20
	if len(promptTokens) < maxI {
		maxI = len(promptTokens)
	}
	if len(outputTokens) < maxI {
		maxI = len(outputTokens)
	}

	for i := maxI; i >= 1; i-- {
		if wordsEqual(outputTokens[:i], promptTokens[len(promptTokens)-i:]) {
			return strings.Join(outputTokens[i:], " ")
		}
	}
	return output
}

func wordsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
