package music

import (
	"fmt"

	"jukebox/internal/core"

	"github.com/bwmarrin/discordgo"
)

type PauseCommand struct{}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current song" }
func (c *PauseCommand) Category() string    { return category }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PauseCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	if err := sctx.Player.Pause(sctx.Event.GuildID); err != nil {
		return core.RespondEphemeral(sctx.Session, sctx.Event, fmt.Sprintf("🎵 %v", err))
	}
	return core.Respond(sctx.Session, sctx.Event, "⏸ Paused.")
}
