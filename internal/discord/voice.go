package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"jukebox/internal/music/queue"
	"jukebox/internal/music/stream"

	"github.com/bwmarrin/discordgo"
)

// openStreamTimeout bounds the metadata and stream URL fetch when a song
// starts, not the playback itself.
const openStreamTimeout = 30 * time.Second

// voiceConnector joins voice channels and wraps the connection as an audio
// sink for the playback engine.
type voiceConnector struct {
	dg *discordgo.Session
}

func (c *voiceConnector) Connect(guildID, voiceChannelID string) (queue.Sink, error) {
	vc, err := c.dg.ChannelVoiceJoin(guildID, voiceChannelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	log.Printf("[Voice] Joined voice channel %s on guild %s", voiceChannelID, guildID)
	return &voiceSink{vc: vc, opener: stream.NewOpener()}, nil
}

// voiceSink streams encoded audio into one voice connection.
type voiceSink struct {
	vc     *discordgo.VoiceConnection
	opener *stream.Opener
}

func (s *voiceSink) OpenStream(song *queue.Song, opts queue.StreamOptions) (queue.StreamControl, error) {
	ctx, cancel := context.WithTimeout(context.Background(), openStreamTimeout)
	defer cancel()

	if err := s.vc.Speaking(true); err != nil {
		log.Printf("[Voice] Speaking(true) failed: %v", err)
	}
	handle, err := s.opener.Open(ctx, song.ID, s.vc.OpusSend, opts.Gain)
	if err != nil {
		return nil, err
	}
	return handle, nil
}

func (s *voiceSink) Release() {
	if err := s.vc.Speaking(false); err != nil {
		log.Printf("[Voice] Speaking(false) failed: %v", err)
	}
	if err := s.vc.Disconnect(); err != nil {
		log.Printf("[Voice] Disconnect failed: %v", err)
	}
}
