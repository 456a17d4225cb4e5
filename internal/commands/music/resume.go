package music

import (
	"fmt"

	"jukebox/internal/core"

	"github.com/bwmarrin/discordgo"
)

type ResumeCommand struct{}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume paused playback" }
func (c *ResumeCommand) Category() string    { return category }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ResumeCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	if err := sctx.Player.Resume(sctx.Event.GuildID); err != nil {
		return core.RespondEphemeral(sctx.Session, sctx.Event, fmt.Sprintf("🎵 %v", err))
	}
	return core.Respond(sctx.Session, sctx.Event, "▶️ Resumed.")
}
