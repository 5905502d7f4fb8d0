package transcriber

import (
	"testing"

	"github.com/hammamikhairi/murmur/internal/logger"
	"github.com/hammamikhairi/murmur/internal/stability"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips bracket annotation", "hello [inaudible] world", "hello world"},
		{"strips music hallucination", "(music) thanks", "thanks"},
		{"strips blank audio", "[BLANK_AUDIO]", ""},
		{"collapses whitespace", "hello    world", "hello world"},
		{"strips thank you for watching", "Thank you. Thanks for watching!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clean(tt.in); got != tt.want {
				t.Errorf("clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampEcho(t *testing.T) {
	got := clampEcho("the cat sat on the mat", "the cat sat")
	if got != "on the mat" {
		t.Fatalf("clampEcho = %q, want 'on the mat'", got)
	}
}

func TestClampEchoNoOverlap(t *testing.T) {
	got := clampEcho("completely different text", "the cat sat")
	if got != "completely different text" {
		t.Fatalf("clampEcho with no overlap should be a no-op, got %q", got)
	}
}

// fakeRecognizer returns a fixed segment list regardless of input.
type fakeRecognizer struct {
	segments []string
	err      error
}

func (f *fakeRecognizer) Recognize(pcm []float32, prompt string, onSegment func(string)) error {
	if f.err != nil {
		return f.err
	}
	for _, s := range f.segments {
		onSegment(s)
	}
	return nil
}

func TestProcessAudioRejectsShortAudio(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	tr := New(&fakeRecognizer{segments: []string{"hello"}}, stability.New(2, 10, 20), log,
		WithMinAudioSeconds(1.0))

	result := tr.ProcessAudio(make([]float32, 100), 0, false)
	if result != nil {
		t.Fatal("expected nil result for audio shorter than min_audio_seconds")
	}
}

func TestProcessAudioCleansAndTracks(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	tr := New(&fakeRecognizer{segments: []string{"hello world", "(music)"}}, stability.New(1, 10, 20), log,
		WithMinAudioSeconds(0))

	result := tr.ProcessAudio(make([]float32, 1600), 0, false)
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Full != "hello world" {
		t.Fatalf("expected cleaned full text 'hello world', got %q", result.Full)
	}
}

func TestProcessAudioRecognizerFailureReturnsNil(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	tr := New(&fakeRecognizer{err: errTest}, stability.New(1, 10, 20), log, WithMinAudioSeconds(0))

	result := tr.ProcessAudio(make([]float32, 1600), 0, false)
	if result != nil {
		t.Fatal("expected nil result on recognizer failure")
	}
}

type testErr string

func (e testErr) Error() string { return string(e) }

var errTest = testErr("boom")
