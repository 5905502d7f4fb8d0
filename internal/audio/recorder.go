package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/hammamikhairi/murmur/internal/logger"
)

// ChunkFrames is the default capture block size (100ms at 16kHz).
const ChunkFrames = SampleRate / 10

// RecorderOption configures a StreamingRecorder.
type RecorderOption func(*StreamingRecorder)

// WithChunkFrames overrides the capture block size.
func WithChunkFrames(frames int) RecorderOption {
	return func(r *StreamingRecorder) { r.chunkFrames = frames }
}

// WithOnAudioChunk installs a tap invoked after each chunk is ingested,
// outside the recorder's lock — for external observation only, never on
// the critical path.
func WithOnAudioChunk(fn func([]float32)) RecorderOption {
	return func(r *StreamingRecorder) { r.onAudioChunk = fn }
}

// StreamingRecorder composes a RingBuffer, a VAD, and an unbounded
// full-session buffer retained for the post-stop final pass. It owns one
// portaudio input stream per Start/Stop cycle; PortAudio itself must be
// initialized exactly once for the process lifetime by the caller (see
// cmd/murmur) — repeated Initialize/Terminate cycles are known to corrupt
// platform audio HAL state.
type StreamingRecorder struct {
	ring *RingBuffer
	vad  *VAD
	log  *logger.Logger

	chunkFrames  int
	onAudioChunk func([]float32)

	mu          sync.Mutex
	stream      *portaudio.Stream
	recording   bool
	fullSession [][]float32
	fullLen     int
}

// NewStreamingRecorder creates a recorder with the given ring capacity
// (seconds) and VAD threshold.
func NewStreamingRecorder(bufferSeconds, vadThreshold float64, vadSpeechPadMs int, log *logger.Logger, opts ...RecorderOption) *StreamingRecorder {
	r := &StreamingRecorder{
		ring:        NewRingBuffer(bufferSeconds),
		vad:         NewVAD(vadThreshold, vadSpeechPadMs),
		log:         log,
		chunkFrames: ChunkFrames,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens the default input device and begins capture. Idempotent:
// clears the ring, resets the VAD, and empties the full-session buffer
// before opening the device, matching session-start semantics.
func (r *StreamingRecorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	r.ring.Clear()
	r.vad.Reset()

	r.mu.Lock()
	r.fullSession = nil
	r.fullLen = 0
	r.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(
		1, 0, SampleRate, r.chunkFrames,
		func(in []float32) { r.onInput(in) },
	)
	if err != nil {
		return fmt.Errorf("audio: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("audio: start input stream: %w", err)
	}

	r.mu.Lock()
	r.stream = stream
	r.recording = true
	r.mu.Unlock()

	return nil
}

// onInput runs on the PortAudio callback thread. It must stay
// lock-bounded and must never invoke user callbacks while holding the
// lock; the onAudioChunk tap fires after release.
func (r *StreamingRecorder) onInput(in []float32) {
	chunk := make([]float32, len(in))
	copy(chunk, in)

	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return
	}
	r.fullSession = append(r.fullSession, chunk)
	r.fullLen += len(chunk)
	r.mu.Unlock()

	r.ring.Append(chunk)
	r.vad.Process(chunk)

	if r.onAudioChunk != nil {
		r.onAudioChunk(chunk)
	}
}

// Stop closes the device and returns the full-session audio captured
// since the last Start, then empties the full-session buffer.
func (r *StreamingRecorder) Stop() []float32 {
	r.mu.Lock()
	stream := r.stream
	r.stream = nil
	r.recording = false
	r.mu.Unlock()

	if stream != nil {
		if err := stream.Stop(); err != nil {
			r.log.Warn("audio: stream stop: %v", err)
		}
		if err := stream.Close(); err != nil {
			r.log.Warn("audio: stream close: %v", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float32, r.fullLen)
	pos := 0
	for _, c := range r.fullSession {
		copy(out[pos:], c)
		pos += len(c)
	}
	r.fullSession = nil
	r.fullLen = 0
	return out
}

// GetAudioWindow proxies to the ring buffer.
func (r *StreamingRecorder) GetAudioWindow(seconds float64) []float32 {
	return r.ring.GetAudioWindow(seconds)
}

// BufferDuration returns the ring buffer's current stored duration.
func (r *StreamingRecorder) BufferDuration() float64 {
	return r.ring.Duration()
}

// IsSpeechActive reports the VAD's current speaking state.
func (r *StreamingRecorder) IsSpeechActive() bool {
	return r.vad.IsSpeaking()
}

// SilenceDuration proxies to the VAD.
func (r *StreamingRecorder) SilenceDuration() float64 {
	return r.vad.SilenceDuration().Seconds()
}

// ConsumeAudio clears the ring and resets the VAD without stopping
// capture — used after a confident commit when the caller prefers
// dropping already-transcribed audio to prompt-only context (see
// consume_audio_on_commit policy in the controller).
func (r *StreamingRecorder) ConsumeAudio() {
	r.ring.Clear()
	r.vad.Reset()
}
