package audio

import "testing"

func TestRingBufferCapacity(t *testing.T) {
	rb := NewRingBuffer(1.0)

	first := make([]float32, SampleRate)
	for i := range first {
		first[i] = 1
	}
	second := make([]float32, SampleRate)
	for i := range second {
		second[i] = 2
	}

	rb.Append(first)
	rb.Append(second)

	if d := rb.Duration(); d > 1.0001 {
		t.Fatalf("duration %f exceeds capacity", d)
	}

	audio := rb.GetAudio()
	if len(audio) != SampleRate {
		t.Fatalf("expected %d samples, got %d", SampleRate, len(audio))
	}
	for _, s := range audio {
		if s != 2 {
			t.Fatalf("expected only the later chunk to survive, found sample %f", s)
		}
	}
}

func TestRingBufferGetAudioWindow(t *testing.T) {
	rb := NewRingBuffer(5.0)

	chunk := make([]float32, SampleRate/10)
	for i := range chunk {
		chunk[i] = float32(i)
	}
	rb.Append(chunk)
	rb.Append(chunk)

	window := rb.GetAudioWindow(0.1)
	if len(window) != len(chunk) {
		t.Fatalf("expected window of %d samples, got %d", len(chunk), len(window))
	}
	for i, v := range window {
		if v != chunk[i] {
			t.Fatalf("window sample %d mismatch: got %f want %f", i, v, chunk[i])
		}
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(1.0)
	rb.Append(make([]float32, 100))
	rb.Clear()
	if rb.Duration() != 0 {
		t.Fatalf("expected duration 0 after clear, got %f", rb.Duration())
	}
	if len(rb.GetAudio()) != 0 {
		t.Fatal("expected no audio after clear")
	}
}

func TestRingBufferAppendIsDefensiveCopy(t *testing.T) {
	rb := NewRingBuffer(1.0)
	chunk := []float32{1, 2, 3}
	rb.Append(chunk)
	chunk[0] = 99

	got := rb.GetAudio()
	if got[0] != 1 {
		t.Fatalf("mutating caller's slice affected stored audio: got %f", got[0])
	}
}
