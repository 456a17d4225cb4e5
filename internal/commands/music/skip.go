package music

import (
	"fmt"

	"jukebox/internal/core"

	"github.com/bwmarrin/discordgo"
)

type SkipCommand struct{}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Vote to skip the current song" }
func (c *SkipCommand) Category() string    { return category }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session := sctx.Session
	event := sctx.Event
	guildID := event.GuildID
	userID := event.Member.User.ID

	voiceState, ok := core.FindUserVoiceState(session, guildID, userID)
	if !ok {
		return core.RespondEphemeral(session, event, "🎵 Join the voice channel to vote.")
	}

	listeners := core.CountVoiceListeners(session, guildID, voiceState.ChannelID)
	result, err := sctx.Player.VoteSkip(guildID, userID, listeners)
	if err != nil {
		return core.RespondEphemeral(session, event, fmt.Sprintf("🎵 %v", err))
	}

	if result.Skipped {
		return core.Respond(session, event, fmt.Sprintf("⏭ Skipped **%s**.", result.Title))
	}
	return core.Respond(session, event,
		fmt.Sprintf("🗳 Skip vote for **%s**: %d/%d.", result.Title, result.Votes, result.Needed))
}
