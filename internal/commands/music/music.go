// Package music holds the slash commands of the playback surface. Each
// command is a thin shell over the player engine; all queue and state
// decisions live there.
package music

import (
	"jukebox/internal/core"
)

const category = "🎵 Music"

// All returns every music command for registration.
func All() []core.Command {
	return []core.Command{
		&PlayCommand{},
		&PauseCommand{},
		&ResumeCommand{},
		&SkipCommand{},
		&StopCommand{},
		&QueueCommand{},
		&StatusCommand{},
		&VolumeCommand{},
	}
}
