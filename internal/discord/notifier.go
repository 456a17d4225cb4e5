package discord

import (
	"fmt"
	"log"

	"jukebox/internal/core"
	"jukebox/internal/music/queue"
	"jukebox/internal/music/view"

	"github.com/bwmarrin/discordgo"
)

// embedNotifier posts playback lifecycle events as embeds to the text channel
// the playback was requested from. Sends run on their own goroutine so the
// engine never blocks on the Discord REST API.
type embedNotifier struct {
	dg *discordgo.Session
}

func (n *embedNotifier) post(channelID string, embed *discordgo.MessageEmbed) {
	if channelID == "" {
		return
	}
	embed.Color = core.EmbedColor
	go func() {
		if err := core.MessageEmbed(n.dg, channelID, embed); err != nil {
			log.Printf("[Notifier] Failed to post to channel %s: %v", channelID, err)
		}
	}()
}

func (n *embedNotifier) SongAdded(channelID string, s *queue.Song) {
	n.post(channelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("🎶 Queued [%s](%s) `[%s]` for **%s**",
			s.Title, s.URL, view.FormatDuration(s.Duration), s.RequesterName),
	})
}

func (n *embedNotifier) SongRejected(channelID string, err error) {
	n.post(channelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("❌ %v", err),
	})
}

func (n *embedNotifier) PlaybackStarted(channelID string, s *queue.Song) {
	n.post(channelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("▶️ Now playing [%s](%s) `[%s]`",
			s.Title, s.URL, view.FormatDuration(s.Duration)),
	})
}

func (n *embedNotifier) PlaybackFailed(channelID string, s *queue.Song, err error) {
	n.post(channelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("❌ Playback of **%s** failed: %v", s.Title, err),
	})
}

func (n *embedNotifier) QueueExhausted(channelID string) {
	n.post(channelID, &discordgo.MessageEmbed{
		Description: "⏹ Ran out of songs, leaving the voice channel.",
	})
}

func (n *embedNotifier) ConnectFailed(channelID string, err error) {
	n.post(channelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("❌ Could not join the voice channel: %v", err),
	})
}
