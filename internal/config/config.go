// Package config loads daemon configuration from defaults, an optional
// YAML file, environment variables, and finally CLI flags, in that order
// of increasing precedence — the same layering the teacher's cmd/main.go
// applies (flags are the final override over .env-provided values).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable named in the external-interfaces table:
// streaming, injector, and controller groups.
type Config struct {
	Hotkey string `yaml:"hotkey"`
	Model  string `yaml:"model"`
	Sound  bool   `yaml:"sound"`

	WhisperPath string `yaml:"whisper_path"`

	BufferSeconds            float64 `yaml:"buffer_seconds"`
	AudioWindowSeconds       float64 `yaml:"audio_window_seconds"`
	InferenceIntervalSeconds float64 `yaml:"inference_interval_seconds"`
	AudioChunkMs             int     `yaml:"audio_chunk_ms"`
	MinAudioSeconds          float64 `yaml:"min_audio_seconds"`
	VADThreshold             float64 `yaml:"vad_threshold"`
	VADSpeechPadMs           int     `yaml:"vad_speech_pad_ms"`
	StabilityCount           int     `yaml:"stability_count"`
	SilenceCommitMs          int     `yaml:"silence_commit_ms"`
	PromptMaxWords           int     `yaml:"prompt_max_words"`
	OverlapMaxWords          int     `yaml:"overlap_max_words"`
	UseInitialPrompt         bool    `yaml:"use_initial_prompt"`
	ConsumeAudioOnCommit     bool    `yaml:"consume_audio_on_commit"`

	MaxUpdatesPerSec     float64 `yaml:"max_updates_per_sec"`
	MaxBackspaceChars    int     `yaml:"max_backspace_chars"`
	KeystrokeDelaySecs   float64 `yaml:"keystroke_delay_seconds"`
	BackspaceDelaySecs   float64 `yaml:"backspace_delay_seconds"`

	ToggleDebounceSeconds float64 `yaml:"toggle_debounce_seconds"`

	Verbose bool   `yaml:"-"`
	LogFile string `yaml:"-"`
}

// Defaults returns the configuration defaults from the external
// interfaces table.
func Defaults() *Config {
	return &Config{
		Hotkey:      "alt_r",
		Model:       "base.en",
		Sound:       true,
		WhisperPath: "",

		BufferSeconds:            12.0,
		AudioWindowSeconds:       10.0,
		InferenceIntervalSeconds: 0.5,
		AudioChunkMs:             100,
		MinAudioSeconds:          0.1,
		VADThreshold:             0.01,
		VADSpeechPadMs:           300,
		StabilityCount:           2,
		SilenceCommitMs:          600,
		PromptMaxWords:           50,
		OverlapMaxWords:          20,
		UseInitialPrompt:         true,
		ConsumeAudioOnCommit:     true,

		MaxUpdatesPerSec:   4,
		MaxBackspaceChars:  30,
		KeystrokeDelaySecs: 0.002,
		BackspaceDelaySecs: 0.001,

		ToggleDebounceSeconds: 0.2,
	}
}

// configPaths lists the locations searched for a YAML config file, in
// precedence order (first match wins), mirroring the original's
// multi-location search.
func configPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "murmur", "config.yaml"),
			filepath.Join(home, ".murmur.yaml"),
		)
	}
	paths = append(paths, "murmur.yaml")
	return paths
}

// Load builds a Config from defaults, then the first config file found,
// then environment variable overrides.
func Load() (*Config, error) {
	cfg := Defaults()

	for _, p := range configPaths() {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", p, err)
		}
		break
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies MURMUR_* environment variables, mirroring
// MURMUR_HOTKEY / MURMUR_MODEL / MURMUR_SOUND from the original.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MURMUR_HOTKEY"); v != "" {
		cfg.Hotkey = v
	}
	if v := os.Getenv("MURMUR_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MURMUR_SOUND"); v != "" {
		cfg.Sound = v == "1" || v == "true"
	}
}

// ModelPath constructs the ggml model file path from WhisperPath and
// Model, matching the original's `whisper_path/models/ggml-{model}.bin`.
func (c *Config) ModelPath() string {
	return filepath.Join(c.WhisperPath, "models", "ggml-"+c.Model+".bin")
}

// InferenceInterval returns InferenceIntervalSeconds as a Duration.
func (c *Config) InferenceInterval() time.Duration {
	return time.Duration(c.InferenceIntervalSeconds * float64(time.Second))
}

// ToggleDebounce returns ToggleDebounceSeconds as a Duration.
func (c *Config) ToggleDebounce() time.Duration {
	return time.Duration(c.ToggleDebounceSeconds * float64(time.Second))
}

// SilenceCommitSeconds returns SilenceCommitMs in seconds.
func (c *Config) SilenceCommitSeconds() float64 {
	return float64(c.SilenceCommitMs) / 1000.0
}

// KeystrokeDelay returns KeystrokeDelaySecs as a Duration.
func (c *Config) KeystrokeDelay() time.Duration {
	return time.Duration(c.KeystrokeDelaySecs * float64(time.Second))
}

// BackspaceDelay returns BackspaceDelaySecs as a Duration.
func (c *Config) BackspaceDelay() time.Duration {
	return time.Duration(c.BackspaceDelaySecs * float64(time.Second))
}
