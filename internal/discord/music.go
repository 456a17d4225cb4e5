package discord

import (
	"time"

	"jukebox/internal/commands/music"
	"jukebox/internal/core"
)

// registerMusicCommands registers the music commands
func (b *Bot) registerMusicCommands() {
	for _, cmd := range music.All() {
		core.RegisterCommand(
			core.ApplyMiddlewares(
				cmd,
				core.WithThrottle(2, 3*time.Second),
				core.WithGuildOnly(),
				core.WithCommandLogger(),
			),
		)
	}
}
