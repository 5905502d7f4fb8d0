// Package sound plays the start/stop/error chimes the original menu-bar
// app plays on macOS via afplay. Fire-and-forget; never blocks the
// controller on playback.
package sound

import (
	"os/exec"
	"runtime"

	"github.com/hammamikhairi/murmur/internal/logger"
)

// systemSounds maps chime names to macOS system sound files, matching
// the original's SOUNDS table.
var systemSounds = map[string]string{
	"start": "/System/Library/Sounds/Funk.aiff",
	"stop":  "/System/Library/Sounds/Blow.aiff",
	"error": "/System/Library/Sounds/Basso.aiff",
}

// Chime plays named system sounds, gated by an enabled flag.
type Chime struct {
	enabled bool
	log     *logger.Logger
}

// New creates a Chime. Playback is a no-op on non-darwin platforms and
// when enabled is false.
func New(enabled bool, log *logger.Logger) *Chime {
	return &Chime{enabled: enabled, log: log}
}

// Play fires the named chime (start/stop/error) and returns immediately.
func (c *Chime) Play(name string) {
	if !c.enabled || runtime.GOOS != "darwin" {
		return
	}
	path, ok := systemSounds[name]
	if !ok {
		return
	}
	cmd := exec.Command("afplay", path)
	if err := cmd.Start(); err != nil {
		c.log.Warn("sound: afplay failed: %v", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			c.log.Debug("sound: afplay exited: %v", err)
		}
	}()
}
