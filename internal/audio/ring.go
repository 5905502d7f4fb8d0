// Package audio provides the bounded ring buffer, RMS voice-activity
// detector, and streaming recorder that feed the transcription pipeline.
package audio

import (
	"math"
	"sync"
)

// SampleRate is the fixed PCM sample rate used throughout the pipeline.
const SampleRate = 16000

// RingBuffer is a bounded, lossy FIFO of mono float32 PCM samples. It is
// stored as a deque of chunks rather than a single flat slice so append
// is O(1) amortized and eviction only touches whole chunks that fall off
// the tail — the buffer must never block the audio callback thread for
// more than a few microseconds.
type RingBuffer struct {
	mu          sync.Mutex
	chunks      [][]float32
	totalLen    int
	maxSamples  int
}

// NewRingBuffer creates a ring buffer with the given capacity in seconds.
func NewRingBuffer(maxSeconds float64) *RingBuffer {
	return &RingBuffer{
		maxSamples: int(maxSeconds * SampleRate),
	}
}

// Append adds a defensive copy of chunk, evicting the oldest whole chunks
// until the buffer is back within capacity. No partial-chunk truncation
// happens on append — only whole chunks are dropped.
func (r *RingBuffer) Append(chunk []float32) {
	if len(chunk) == 0 {
		return
	}
	cp := make([]float32, len(chunk))
	copy(cp, chunk)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.chunks = append(r.chunks, cp)
	r.totalLen += len(cp)

	for r.totalLen > r.maxSamples && len(r.chunks) > 0 {
		evicted := r.chunks[0]
		r.chunks = r.chunks[1:]
		r.totalLen -= len(evicted)
	}
}

// GetAudio returns a freshly allocated copy of all stored samples.
func (r *RingBuffer) GetAudio() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flatten()
}

// GetAudioWindow returns a freshly allocated copy of at most the tail
// lastSeconds worth of samples, in arrival order.
func (r *RingBuffer) GetAudioWindow(lastSeconds float64) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := int(math.Ceil(lastSeconds * SampleRate))
	if want >= r.totalLen {
		return r.flatten()
	}

	out := make([]float32, want)
	filled := 0
	// Walk chunks from the tail backwards, filling out from the end.
	for i := len(r.chunks) - 1; i >= 0 && filled < want; i-- {
		c := r.chunks[i]
		n := len(c)
		take := n
		if filled+take > want {
			take = want - filled
			copy(out[want-filled-take:want-filled], c[n-take:])
		} else {
			copy(out[want-filled-take:want-filled], c)
		}
		filled += take
	}
	return out
}

// flatten concatenates all chunks into one freshly allocated slice. Caller
// must hold the lock.
func (r *RingBuffer) flatten() []float32 {
	out := make([]float32, r.totalLen)
	pos := 0
	for _, c := range r.chunks {
		copy(out[pos:], c)
		pos += len(c)
	}
	return out
}

// Clear empties the buffer.
func (r *RingBuffer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = nil
	r.totalLen = 0
}

// Duration returns the currently stored audio length in seconds.
func (r *RingBuffer) Duration() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(r.totalLen) / SampleRate
}
