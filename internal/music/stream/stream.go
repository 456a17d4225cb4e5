// Package stream turns a YouTube video into 48kHz stereo Opus frames on a
// send channel. The chain is: kkdai stream URL -> ffmpeg s16le transcode ->
// per-sample gain -> gopus encode. A Handle controls the running pipeline.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// frameDuration is the wall-clock audio covered by one PCM frame.
const frameDuration = 20 * time.Millisecond

// ErrNoAudioFormat means the video exposes no usable audio stream.
var ErrNoAudioFormat = errors.New("no audio format available")

// Opener builds playback pipelines for video ids.
type Opener struct {
	yt *youtube.Client
}

func NewOpener() *Opener {
	return &Opener{
		yt: &youtube.Client{
			HTTPClient: &http.Client{Timeout: 15 * time.Second},
		},
	}
}

// Open starts a pipeline for videoID and begins sending encoded frames on
// send. gain is the linear amplitude multiplier applied before encoding. The
// returned Handle reports completion on Done.
func (o *Opener) Open(ctx context.Context, videoID string, send chan<- []byte, gain float64) (*Handle, error) {
	streamURL, err := o.audioURL(ctx, videoID)
	if err != nil {
		return nil, err
	}

	pcm, cleanup, err := transcode(streamURL)
	if err != nil {
		return nil, err
	}

	h, err := newHandle(pcm, cleanup, send, gain)
	if err != nil {
		cleanup()
		return nil, err
	}
	go h.run()
	return h, nil
}

func (o *Opener) audioURL(ctx context.Context, videoID string) (string, error) {
	video, err := o.yt.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("fetch video %s: %w", videoID, err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", ErrNoAudioFormat
	}
	url, err := o.yt.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("stream url for %s: %w", videoID, err)
	}
	return url, nil
}
