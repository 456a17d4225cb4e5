package music

import (
	"fmt"

	"jukebox/internal/core"

	"github.com/bwmarrin/discordgo"
)

type StopCommand struct{}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave" }
func (c *StopCommand) Category() string    { return category }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StopCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	if err := sctx.Player.Stop(sctx.Event.GuildID); err != nil {
		return core.RespondEphemeral(sctx.Session, sctx.Event, fmt.Sprintf("🎵 %v", err))
	}
	return core.Respond(sctx.Session, sctx.Event, "⏹ Stopped playback and cleared the queue.")
}
