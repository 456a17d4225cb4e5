package music

import (
	"fmt"
	"strings"

	"jukebox/internal/core"
	"jukebox/internal/music/view"

	"github.com/bwmarrin/discordgo"
)

type QueueCommand struct{}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the upcoming songs" }
func (c *QueueCommand) Category() string    { return category }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "page",
				Description: "Queue page to show",
				Required:    false,
			},
		},
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	q, ok := sctx.Player.Queue(sctx.Event.GuildID)
	if !ok {
		return core.RespondEphemeral(sctx.Session, sctx.Event, "🎵 The queue is empty.")
	}

	page := 1
	if opts := sctx.Event.ApplicationCommandData().Options; len(opts) > 0 {
		page = int(opts[0].IntValue())
	}

	p := view.Project(q, page)

	var sb strings.Builder
	if p.Now != nil {
		state := "▶️"
		if p.Now.Paused {
			state = "⏸"
		}
		fmt.Fprintf(&sb, "%s [%s](%s) `[%s / %s]`\n\n",
			state, p.Now.Title, p.Now.URL,
			view.FormatDuration(p.Now.Elapsed), view.FormatDuration(p.Now.Duration))
	}
	for _, e := range p.Entries {
		fmt.Fprintf(&sb, "`%d.` [%s](%s) `[%s]` by %s\n",
			e.Position, e.Title, e.URL, view.FormatDuration(e.Duration), e.RequesterName)
	}
	if len(p.Entries) == 0 {
		sb.WriteString("Nothing else queued.\n")
	}

	return core.RespondEmbed(sctx.Session, sctx.Event, &discordgo.MessageEmbed{
		Title:       "🎵 Queue",
		Description: sb.String(),
		Color:       core.EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d • %d songs • %s total",
				p.Page, p.Pages, p.TotalSongs, view.FormatDuration(p.TotalDuration)),
		},
	})
}
