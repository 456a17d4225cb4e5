package music

import (
	"fmt"
	"log"

	"jukebox/internal/core"
	"jukebox/internal/music/player"

	"github.com/bwmarrin/discordgo"
)

type VolumeCommand struct{}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the playback volume (1-10)" }
func (c *VolumeCommand) Category() string    { return category }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minLevel := float64(1)
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "level",
				Description: "Volume level, 5 is normal",
				Required:    true,
				MinValue:    &minLevel,
				MaxValue:    10,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*core.SlashInteractionContext)
	if !ok {
		return nil
	}

	level := float64(sctx.Event.ApplicationCommandData().Options[0].IntValue())
	if level < 1 || level > 10 {
		return core.RespondEphemeral(sctx.Session, sctx.Event, "🎵 Volume must be between 1 and 10.")
	}

	guildID := sctx.Event.GuildID
	if err := sctx.Storage.SetDefaultVolume(guildID, level); err != nil {
		log.Printf("[WARN] Failed to persist volume for guild %s: %v", guildID, err)
	}
	// Apply to the running stream too, when there is one.
	if err := sctx.Player.SetVolume(guildID, level); err != nil && err != player.ErrNoQueue {
		return core.RespondEphemeral(sctx.Session, sctx.Event, fmt.Sprintf("🎵 %v", err))
	}
	return core.Respond(sctx.Session, sctx.Event, fmt.Sprintf("🔊 Volume set to %g.", level))
}
