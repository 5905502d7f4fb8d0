package transcriber

import (
	"fmt"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperOption configures a WhisperRecognizer.
type WhisperOption func(*WhisperRecognizer)

// WithLanguage sets the recognition language (BCP-47, or "auto").
func WithLanguage(lang string) WhisperOption {
	return func(w *WhisperRecognizer) { w.language = lang }
}

// WithThreads sets the number of CPU threads whisper.cpp uses per call.
func WithThreads(n uint) WhisperOption {
	return func(w *WhisperRecognizer) { w.threads = n }
}

// WhisperRecognizer implements Recognizer on top of the whisper.cpp Go
// bindings (CGO), loaded once at startup and shared across the process.
// A whisper.Context is not goroutine-safe, so each call is serialized by mu.
type WhisperRecognizer struct {
	mu       sync.Mutex
	model    whisperlib.Model
	ctx      whisperlib.Context
	language string
	threads  uint
}

// NewWhisperRecognizer loads the model at modelPath and configures a
// reusable context.
func NewWhisperRecognizer(modelPath string, opts ...WhisperOption) (*WhisperRecognizer, error) {
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcriber: load whisper model %q: %w", modelPath, err)
	}

	w := &WhisperRecognizer{
		model:    model,
		language: "auto",
		threads:  4,
	}
	for _, o := range opts {
		o(w)
	}

	ctx, err := model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("transcriber: create whisper context: %w", err)
	}
	ctx.SetLanguage(w.language)
	ctx.SetThreads(w.threads)
	ctx.SetTranslate(false)
	ctx.SetMaxSegmentLength(0)
	w.ctx = ctx

	return w, nil
}

// Recognize runs one whisper.cpp pass over pcm, invoking onSegment once
// per recognized segment in order.
func (w *WhisperRecognizer) Recognize(pcm []float32, initialPrompt string, onSegment func(text string)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Always set the prompt, so an empty prompt clears the previous one on
	// the reused context.
	w.ctx.SetInitialPrompt(initialPrompt)

	err := w.ctx.Process(pcm, nil, func(segment whisperlib.Segment) {
		onSegment(segment.Text)
	}, nil)
	if err != nil {
		return fmt.Errorf("transcriber: whisper process: %w", err)
	}
	return nil
}

// Close releases the whisper model.
func (w *WhisperRecognizer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model != nil {
		return w.model.Close()
	}
	return nil
}
