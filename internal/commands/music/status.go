package music

import (
	"fmt"

	"jukebox/internal/core"
	"jukebox/internal/music/view"

	"github.com/bwmarrin/discordgo"
)

type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Show what is playing right now" }
func (c *StatusCommand) Category() string    { return category }

func (c *StatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StatusCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	q, ok := sctx.Player.Queue(sctx.Event.GuildID)
	if !ok {
		return core.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Nothing is playing.")
	}

	p := view.Project(q, 1)
	if p.Now == nil {
		return core.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Nothing is playing.")
	}

	state := "▶️ Playing"
	if p.Now.Paused {
		state = "⏸ Paused"
	}
	return core.RespondEmbed(sctx.Session, sctx.Event, &discordgo.MessageEmbed{
		Title: state,
		Description: fmt.Sprintf("[%s](%s)\n`%s / %s` (%s left)\nVolume %g, %d songs queued",
			p.Now.Title, p.Now.URL,
			view.FormatDuration(p.Now.Elapsed), view.FormatDuration(p.Now.Duration),
			view.FormatDuration(p.Now.Remaining), q.Volume(), p.TotalSongs),
		Color: core.EmbedColor,
	})
}
