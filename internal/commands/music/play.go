package music

import (
	"context"
	"fmt"

	"jukebox/internal/core"
	"jukebox/internal/music/admission"
	"jukebox/internal/music/player"

	"github.com/bwmarrin/discordgo"
)

type PlayCommand struct{}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song or playlist, or search YouTube" }
func (c *PlayCommand) Category() string    { return category }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "YouTube link, playlist link or search text",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	session := sctx.Session
	event := sctx.Event
	member := event.Member

	voiceState, ok := core.FindUserVoiceState(session, event.GuildID, member.User.ID)
	if !ok {
		return core.RespondEphemeral(session, event, "🎵 Join a voice channel first.")
	}

	if err := session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	query := event.ApplicationCommandData().Options[0].StringValue()
	err := sctx.Player.Enqueue(context.Background(), player.EnqueueRequest{
		GuildID:      event.GuildID,
		VoiceChannel: voiceState.ChannelID,
		TextChannel:  event.ChannelID,
		Query:        query,
		By: admission.Requester{
			ID:   member.User.ID,
			Name: member.User.Username,
		},
	})

	content := fmt.Sprintf("🎵 Working on `%s`...", query)
	if err != nil {
		content = fmt.Sprintf("🎵 %v", err)
	}
	_, ferr := session.FollowupMessageCreate(event.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return ferr
}
