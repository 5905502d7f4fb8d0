// Murmur — a push-to-talk dictation daemon.
//
// Usage:
//
//	murmur [-verbose] [-quiet] [-hotkey=alt_r] [-model=base.en]
package main

import (
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gordonklaus/portaudio"
	"github.com/joho/godotenv"

	"github.com/hammamikhairi/murmur/internal/audio"
	"github.com/hammamikhairi/murmur/internal/config"
	"github.com/hammamikhairi/murmur/internal/controller"
	"github.com/hammamikhairi/murmur/internal/display"
	"github.com/hammamikhairi/murmur/internal/hotkey"
	"github.com/hammamikhairi/murmur/internal/injector"
	"github.com/hammamikhairi/murmur/internal/logger"
	"github.com/hammamikhairi/murmur/internal/sound"
	"github.com/hammamikhairi/murmur/internal/stability"
	"github.com/hammamikhairi/murmur/internal/transcriber"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".murmur-logs/murmur.log", "file to write logs to (use \"stderr\" to log to console)")
	whisperPath := flag.String("whisper-path", "", "base directory containing models/ggml-<model>.bin")
	hotkeyFlag := flag.String("hotkey", "", "keycode name toggling the dictation session (overrides config)")
	modelFlag := flag.String("model", "", "whisper model name, e.g. base.en (overrides config)")
	noStatus := flag.Bool("no-status", false, "disable the terminal status bar")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed: %v", err)
		os.Exit(1)
	}
	if *whisperPath != "" {
		cfg.WhisperPath = *whisperPath
	}
	if *hotkeyFlag != "" {
		cfg.Hotkey = *hotkeyFlag
	}
	if *modelFlag != "" {
		cfg.Model = *modelFlag
	}

	// PortAudio is initialized exactly once for the process lifetime —
	// repeated Initialize/Terminate cycles are known to corrupt platform
	// audio HAL state.
	if err := portaudio.Initialize(); err != nil {
		log.Error("portaudio init failed: %v", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	rec := audio.NewStreamingRecorder(cfg.BufferSeconds, cfg.VADThreshold, cfg.VADSpeechPadMs, log,
		audio.WithChunkFrames(cfg.AudioChunkMs*audio.SampleRate/1000))

	emitter := injector.NewQuartzEmitter()
	inj := injector.New(emitter, log,
		injector.WithMaxUpdatesPerSec(cfg.MaxUpdatesPerSec),
		injector.WithMaxBackspaceChars(cfg.MaxBackspaceChars),
		injector.WithKeystrokeDelay(cfg.KeystrokeDelay()),
		injector.WithBackspaceDelay(cfg.BackspaceDelay()))

	chime := sound.New(cfg.Sound, log)

	statusView := display.NewStatus()
	if !*noStatus {
		go func() {
			if err := statusView.Run(); err != nil {
				log.Warn("status view exited: %v", err)
			}
		}()
	}

	ctrlCfg := controller.Config{
		InferenceInterval:    cfg.InferenceInterval(),
		AudioWindowSeconds:   cfg.AudioWindowSeconds,
		ConsumeAudioOnCommit: cfg.ConsumeAudioOnCommit,
		ToggleDebounce:       cfg.ToggleDebounce(),
	}

	// The recognizer is a heavy resource; it is loaded once on its own
	// goroutine and handed to the controller via a completion callback —
	// the controller stays in Loading until then.
	ctrl := controller.New(ctrlCfg, rec, nil, inj, chime, log)
	ctrl.OnStateChange(func(s controller.State) {
		log.Info("state -> %s", s)
		statusView.Update(s.String(), inj.TypedText(), "", ctrl.RefusedCount())
	})
	ctrl.OnUpdate(func(r stability.Result) {
		statusView.Update("Live", r.Committed, r.Pending, ctrl.RefusedCount())
	})
	ctrl.OnComplete(func(r stability.Result) {
		statusView.Update("Idle", r.Committed, "", ctrl.RefusedCount())
	})

	go func() {
		log.Info("loading whisper model %s", cfg.ModelPath())
		recognizer, err := transcriber.NewWhisperRecognizer(cfg.ModelPath())
		if err != nil {
			log.Error("model load failed: %v", err)
			statusView.Update("Error", err.Error(), "", 0)
			return
		}
		tracker := stability.New(cfg.StabilityCount, cfg.SilenceCommitSeconds(), cfg.OverlapMaxWords)
		tr := transcriber.New(recognizer, tracker, log,
			transcriber.WithMinAudioSeconds(cfg.MinAudioSeconds),
			transcriber.WithPromptMaxWords(cfg.PromptMaxWords),
			transcriber.WithUseInitialPrompt(cfg.UseInitialPrompt))
		ctrl.SetTranscriber(tr)
		ctrl.Ready()
		log.Info("murmur ready (hotkey=%s, model=%s)", cfg.Hotkey, cfg.Model)
	}()

	var listener hotkey.Listener
	listener, err = newHotkeyListener(cfg.Hotkey, log)
	if err != nil {
		log.Warn("hotkey listener unavailable, falling back to manual trigger: %v", err)
		listener = hotkey.NewManual()
	}
	defer listener.Close()

	go ctrl.Run(listener)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("murmur shutting down")
	statusView.Quit()
}
