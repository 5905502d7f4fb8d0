// Package controller implements the state machine that orchestrates the
// recorder, transcriber, and injector: Loading → Idle ↔ Live →
// Transcribing → Idle.
package controller

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/murmur/internal/audio"
	"github.com/hammamikhairi/murmur/internal/hotkey"
	"github.com/hammamikhairi/murmur/internal/injector"
	"github.com/hammamikhairi/murmur/internal/logger"
	"github.com/hammamikhairi/murmur/internal/sound"
	"github.com/hammamikhairi/murmur/internal/stability"
	"github.com/hammamikhairi/murmur/internal/transcriber"
)

// State is the controller's session state.
type State int

const (
	Loading State = iota
	Idle
	Live
	Transcribing
)

// String renders the state the way the teacher's domain enums do.
func (s State) String() string {
	switch s {
	case Loading:
		return "Loading"
	case Idle:
		return "Idle"
	case Live:
		return "Live"
	case Transcribing:
		return "Transcribing"
	default:
		return "Unknown"
	}
}

// Config carries the streaming/injector/controller tunables the
// controller needs directly (the rest are consumed by the components it
// wires at construction time).
type Config struct {
	InferenceInterval    time.Duration
	AudioWindowSeconds   float64
	ConsumeAudioOnCommit bool
	ToggleDebounce       time.Duration
}

// Controller owns the lifetime of the recorder, transcriber, and
// injector, and serializes all session transitions.
type Controller struct {
	cfg Config
	log *logger.Logger

	recorder    *audio.StreamingRecorder
	transcriber *transcriber.Transcriber
	injector    *injector.Injector
	chime       *sound.Chime

	onUpdate   func(stability.Result)
	onComplete func(stability.Result)
	onState    func(State)

	mu            sync.Mutex
	state         State
	stopCh        chan struct{}
	workerDone    chan struct{}
	lastToggle    time.Time
	refusedCount  atomic.Int64
}

// New creates a Controller wiring the given components. The transcriber
// may be nil if the recognizer is still loading — see SetTranscriber.
func New(cfg Config, rec *audio.StreamingRecorder, tr *transcriber.Transcriber, inj *injector.Injector, chime *sound.Chime, log *logger.Logger) *Controller {
	return &Controller{
		cfg:         cfg,
		log:         log,
		recorder:    rec,
		transcriber: tr,
		injector:    inj,
		chime:       chime,
		state:       Loading,
	}
}

// SetTranscriber installs the transcriber once its recognizer has
// finished loading. Must be called before Ready.
func (c *Controller) SetTranscriber(tr *transcriber.Transcriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcriber = tr
}

// getTranscriber returns the currently installed transcriber.
func (c *Controller) getTranscriber() *transcriber.Transcriber {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcriber
}

// OnUpdate registers the callback fired for each non-final streaming
// result whose full text is non-empty.
func (c *Controller) OnUpdate(fn func(stability.Result)) { c.onUpdate = fn }

// OnComplete registers the callback fired once the post-stop final pass
// completes.
func (c *Controller) OnComplete(fn func(stability.Result)) { c.onComplete = fn }

// OnStateChange registers the callback fired on every state transition.
func (c *Controller) OnStateChange(fn func(State)) { c.onState = fn }

// Ready transitions the controller out of Loading once the recognizer
// has finished loading.
func (c *Controller) Ready() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setState(Idle)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HandleToggle is the hotkey entry point: debounces repeated events and
// moves Idle↔Live. Must be called from a single dispatch point — the
// hotkey listener only enqueues, never calls this inline from its own
// read loop concurrently.
func (c *Controller) HandleToggle() {
	c.mu.Lock()
	now := time.Now()
	if now.Sub(c.lastToggle) < c.cfg.ToggleDebounce {
		c.mu.Unlock()
		return
	}
	c.lastToggle = now
	state := c.state
	c.mu.Unlock()

	switch state {
	case Idle:
		c.startLive()
	case Live:
		c.stopLive()
	}
}

// Run dispatches toggle events from listener until the listener's Toggle
// channel is closed. Intended to run on its own goroutine.
func (c *Controller) Run(listener hotkey.Listener) {
	for range listener.Toggle() {
		c.HandleToggle()
	}
}

func (c *Controller) setState(s State) {
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

// startLive enters Live: resets tracker/injector, starts the recorder,
// spawns the inference worker.
func (c *Controller) startLive() {
	c.mu.Lock()
	c.setState(Live)
	c.mu.Unlock()

	c.chime.Play("start")

	c.getTranscriber().Reset()
	c.injector.Reset()

	stopCh := make(chan struct{})
	workerDone := make(chan struct{})
	c.mu.Lock()
	c.stopCh = stopCh
	c.workerDone = workerDone
	c.mu.Unlock()

	if err := c.recorder.Start(); err != nil {
		c.log.Error("controller: recorder start failed: %v", err)
		c.mu.Lock()
		c.setState(Idle)
		c.mu.Unlock()
		return
	}

	go c.inferenceWorker(stopCh, workerDone)
}

// inferenceWorker polls every 50ms; every InferenceInterval it pulls the
// sliding window and runs one transcriber pass, forwarding non-empty
// results to the injector.
func (c *Controller) inferenceWorker(stopCh, done chan struct{}) {
	defer close(done)
	lastInference := time.Time{}

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		now := time.Now()
		if now.Sub(lastInference) >= c.cfg.InferenceInterval {
			if c.recorder.IsSpeechActive() || c.recorder.BufferDuration() > 1.0 {
				windowed := c.recorder.GetAudioWindow(c.cfg.AudioWindowSeconds)
				if len(windowed) > 1600 {
					silence := c.recorder.SilenceDuration()
					result := c.getTranscriber().ProcessAudio(windowed, silence, false)
					if result != nil && result.Full != "" {
						if c.injector.Update(result.Full, false) {
							if c.cfg.ConsumeAudioOnCommit && result.Pending == "" && result.Committed != "" {
								c.recorder.ConsumeAudio()
							}
						} else {
							c.refusedCount.Add(1)
						}
						if c.onUpdate != nil {
							c.onUpdate(*result)
						}
					}
				}
			}
			lastInference = now
		}

		select {
		case <-stopCh:
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// stopLive leaves Live: signals and joins the worker (bounded 1s), stops
// the recorder, and — if there is enough audio — runs the final pass on
// its own ephemeral goroutine before returning to Idle.
func (c *Controller) stopLive() {
	c.mu.Lock()
	c.setState(Transcribing)
	stopCh := c.stopCh
	workerDone := c.workerDone
	c.mu.Unlock()

	c.chime.Play("stop")

	if stopCh != nil {
		close(stopCh)
	}
	if workerDone != nil {
		select {
		case <-workerDone:
		case <-time.After(1 * time.Second):
			c.log.Warn("controller: inference worker join timed out, proceeding")
		}
	}

	fullAudio := c.recorder.Stop()

	if len(fullAudio) <= 1600 {
		c.mu.Lock()
		c.setState(Idle)
		c.mu.Unlock()
		return
	}

	go c.finalize(fullAudio)
}

// finalize runs the post-stop final pass. Not cancellable once spawned;
// bounded by one recognizer invocation.
func (c *Controller) finalize(fullAudio []float32) {
	result := c.getTranscriber().ProcessAudio(fullAudio, 0, true)
	if result != nil && result.Full != "" {
		c.injector.Update(result.Full, true)
		if c.onComplete != nil {
			c.onComplete(*result)
		}
	} else {
		c.log.Warn("controller: no final transcription result")
	}

	c.mu.Lock()
	c.setState(Idle)
	c.mu.Unlock()
}

// RefusedCount returns the number of non-final injector updates that did
// not result in emitted keystrokes since the controller was created
// (throttled, no-op, or over budget — Update does not distinguish the
// reason). It does not take the controller's lock, so it may be called
// from the state-change callback.
func (c *Controller) RefusedCount() int {
	return int(c.refusedCount.Load())
}
