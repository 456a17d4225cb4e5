package queue

import (
	"fmt"
	"sync"
	"time"
)

// StreamOptions carries per-stream settings from the engine to the sink.
type StreamOptions struct {
	// Gain is the linear amplitude multiplier applied to PCM samples.
	Gain float64
}

// Sink is a live audio output for one guild, obtained from the transport
// connector. A queue owns at most one sink at a time.
type Sink interface {
	OpenStream(song *Song, opts StreamOptions) (StreamControl, error)
	Release()
}

// GuildQueue is the per-guild playback state: the ordered song list (head is
// the currently playing track), the transport sink, the target volume and the
// explicit playback state. All mutation goes through its mutex.
type GuildQueue struct {
	guildID       string
	voiceChannel  string
	textChannel   string
	mu            sync.Mutex
	songs         []*Song
	state         State
	volume        float64
	stoppedByUser bool
	sink          Sink
}

func newGuildQueue(guildID, voiceChannel, textChannel string, volume float64) *GuildQueue {
	return &GuildQueue{
		guildID:      guildID,
		voiceChannel: voiceChannel,
		textChannel:  textChannel,
		volume:       volume,
		state:        StateIdle,
	}
}

func (q *GuildQueue) GuildID() string      { return q.guildID }
func (q *GuildQueue) VoiceChannel() string { return q.voiceChannel }
func (q *GuildQueue) TextChannel() string  { return q.textChannel }

// Offer runs verdict on the current song list under the queue lock and
// appends the song when the verdict is nil. Admission checks (duplicate scan,
// per-user count) and the append are atomic this way.
func (q *GuildQueue) Offer(s *Song, verdict func(songs []*Song) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if verdict != nil {
		if err := verdict(q.songs); err != nil {
			return err
		}
	}
	q.songs = append(q.songs, s)
	return nil
}

// Head returns the currently playing (or next to play) song.
func (q *GuildQueue) Head() (*Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.songs) == 0 {
		return nil, false
	}
	return q.songs[0], true
}

// Advance discards the head song and returns the new head, if any.
func (q *GuildQueue) Advance() (*Song, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.songs) == 0 {
		return nil, false
	}
	q.songs = q.songs[1:]
	if len(q.songs) == 0 {
		return nil, false
	}
	return q.songs[0], true
}

func (q *GuildQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.songs)
}

// Songs returns a copy of the song list for read-only consumers.
func (q *GuildQueue) Songs() []*Song {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Song, len(q.songs))
	copy(out, q.songs)
	return out
}

// TotalDuration is the summed duration of all queued songs.
func (q *GuildQueue) TotalDuration() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	var total time.Duration
	for _, s := range q.songs {
		total += s.Duration
	}
	return total
}

func (q *GuildQueue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// ClaimStart atomically claims the queue's one-time transition from
// Connecting to Playing. The claim succeeds only once the transport sink is
// attached, so a winner can always open a stream; every later claim fails.
func (q *GuildQueue) ClaimStart() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != StateConnecting || q.sink == nil {
		return false
	}
	q.state = StatePlaying
	return true
}

// SetState validates and applies a state transition.
func (q *GuildQueue) SetState(to State) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.state.canEnter(to) {
		return fmt.Errorf("invalid transition %s -> %s for guild %s", q.state, to, q.guildID)
	}
	q.state = to
	return nil
}

func (q *GuildQueue) Volume() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.volume
}

func (q *GuildQueue) SetVolume(v float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.volume = v
}

// MarkStopped records that teardown was requested by the user, which
// suppresses the queue-exhausted notification.
func (q *GuildQueue) MarkStopped() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stoppedByUser = true
}

func (q *GuildQueue) StoppedByUser() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stoppedByUser
}

func (q *GuildQueue) SetSink(s Sink) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sink = s
}

func (q *GuildQueue) Sink() Sink {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sink
}
