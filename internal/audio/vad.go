package audio

import (
	"math"
	"sync"
	"time"
)

// VAD is an RMS-threshold voice-activity detector with post-speech
// padding: a brief window after speech ends is still reported as
// speaking, which smooths mid-utterance flicker without affecting the
// wallclock-based silence timer used for the commit decision.
type VAD struct {
	mu sync.Mutex

	threshold        float64
	padSeconds        float64
	isSpeaking       bool
	lastSpeechTime   time.Time
	now              func() time.Time
}

// NewVAD creates a VAD with the given RMS threshold and speech-pad
// duration (post-speech hold, in milliseconds).
func NewVAD(threshold float64, speechPadMs int) *VAD {
	return &VAD{
		threshold:  threshold,
		padSeconds: float64(speechPadMs) / 1000.0,
		now:        time.Now,
	}
}

// Process computes the RMS of chunk and updates speaking state. Returns
// true if the chunk is speech, or if still within the post-speech pad
// window. An empty chunk returns false without touching state.
func (v *VAD) Process(chunk []float32) bool {
	if len(chunk) == 0 {
		return false
	}

	var sumSq float64
	for _, s := range chunk {
		sumSq += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSq / float64(len(chunk)))

	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if rms > v.threshold {
		v.isSpeaking = true
		v.lastSpeechTime = now
		return true
	}

	if v.isSpeaking && now.Sub(v.lastSpeechTime).Seconds() < v.padSeconds {
		return true
	}

	v.isSpeaking = false
	return false
}

// IsSpeaking reports the current speaking state without feeding new audio.
func (v *VAD) IsSpeaking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isSpeaking
}

// SilenceDuration returns 0 while speaking, otherwise wallclock time since
// the last detected speech.
func (v *VAD) SilenceDuration() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.isSpeaking {
		return 0
	}
	if v.lastSpeechTime.IsZero() {
		return 0
	}
	return v.now().Sub(v.lastSpeechTime)
}

// Reset zeroes all state.
func (v *VAD) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.isSpeaking = false
	v.lastSpeechTime = time.Time{}
}
