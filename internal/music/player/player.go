// Package player is the per-guild playback engine. It owns the lifecycle of
// a guild queue from first enqueue to teardown: resolving queries, admitting
// songs, driving the voice sink, advancing on song end or failure, and
// announcing what happened through a Notifier.
package player

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"jukebox/internal/music/admission"
	"jukebox/internal/music/queue"
	"jukebox/internal/music/resolver"
	"jukebox/internal/music/votes"
	"jukebox/pkg/jobmgr"
)

var (
	ErrNoQueue      = errors.New("nothing is playing in this guild")
	ErrNotPlaying   = errors.New("no track is currently playing")
	ErrNotPaused    = errors.New("playback is not paused")
	ErrNoStream     = errors.New("the stream is still starting")
	ErrNoneAdded    = errors.New("no songs could be added")
	ErrWrongChannel = errors.New("join the active voice channel first")
)

// Resolver turns raw queries into playable media.
type Resolver interface {
	Classify(raw string) resolver.Query
	ResolveDirect(ctx context.Context, ref string) (*resolver.MediaItem, error)
	ResolveSearch(ctx context.Context, text string) (*resolver.MediaItem, error)
	ResolvePlaylist(ctx context.Context, listID string) (<-chan resolver.Item, error)
}

// Connector joins a voice channel and hands back the guild's audio sink.
type Connector interface {
	Connect(guildID, voiceChannelID string) (queue.Sink, error)
}

// Notifier receives playback lifecycle events for user-facing announcements,
// addressed to the text channel the playback was requested from.
// Implementations must not block.
type Notifier interface {
	SongAdded(channelID string, s *queue.Song)
	SongRejected(channelID string, err error)
	PlaybackStarted(channelID string, s *queue.Song)
	PlaybackFailed(channelID string, s *queue.Song, err error)
	QueueExhausted(channelID string)
	ConnectFailed(channelID string, err error)
}

// PolicyProvider supplies the per-guild admission policy and default volume.
type PolicyProvider interface {
	MusicPolicy(guildID string) (admission.Policy, float64)
}

// Player coordinates playback across all guilds.
type Player struct {
	registry  *queue.Registry
	resolver  Resolver
	connector Connector
	notifier  Notifier
	policies  PolicyProvider
	votes     *votes.Tracker
	jobs      *jobmgr.Manager
}

func New(reg *queue.Registry, res Resolver, conn Connector, n Notifier, pol PolicyProvider) *Player {
	return &Player{
		registry:  reg,
		resolver:  res,
		connector: conn,
		notifier:  n,
		policies:  pol,
		votes:     votes.NewTracker(),
		jobs: jobmgr.NewManager(func(name string, err error) {
			if err != nil {
				log.Printf("[Player] Job %s finished with error: %v", name, err)
			}
		}),
	}
}

// EnqueueRequest is one play command from a guild member.
type EnqueueRequest struct {
	GuildID      string
	VoiceChannel string
	TextChannel  string
	Query        string
	By           admission.Requester
}

// Enqueue resolves the query, admits the result into the guild queue and
// starts playback when this request created the queue. Exactly one of many
// concurrent first enqueues connects to voice.
func (p *Player) Enqueue(ctx context.Context, req EnqueueRequest) error {
	policy, volume := p.policies.MusicPolicy(req.GuildID)

	q, created := p.registry.Create(req.GuildID, req.VoiceChannel, req.TextChannel, volume)
	if created {
		if err := q.SetState(queue.StateConnecting); err != nil {
			p.registry.Remove(req.GuildID)
			return err
		}
		sink, err := p.connector.Connect(req.GuildID, req.VoiceChannel)
		if err != nil {
			p.registry.Remove(req.GuildID)
			p.notifier.ConnectFailed(q.TextChannel(), err)
			return fmt.Errorf("join voice channel: %w", err)
		}
		q.SetSink(sink)
	} else if q.VoiceChannel() != req.VoiceChannel {
		return ErrWrongChannel
	}

	query := p.resolver.Classify(req.Query)
	if query.Kind == resolver.KindPlaylist {
		return p.enqueuePlaylist(q, query.Ref, req.By, policy, created)
	}

	media, err := p.resolveOne(ctx, query)
	if err != nil {
		p.abandonIfEmpty(q, created)
		return err
	}

	// Rejections surface through the command reply; the notifier only
	// reports playlist-expansion rejections, which have no pending reply.
	song, err := admission.TryEnqueue(q, media, req.By, policy)
	if err != nil {
		p.abandonIfEmpty(q, created)
		return err
	}
	p.notifier.SongAdded(q.TextChannel(), song)

	p.startHead(q)
	return nil
}

func (p *Player) resolveOne(ctx context.Context, query resolver.Query) (*resolver.MediaItem, error) {
	if query.Kind == resolver.KindDirect {
		return p.resolver.ResolveDirect(ctx, query.Ref)
	}
	return p.resolver.ResolveSearch(ctx, query.Ref)
}

// enqueuePlaylist expands the playlist on a background job so the first
// accepted entry starts playing while the rest still resolve.
func (p *Player) enqueuePlaylist(q *queue.GuildQueue, listID string, by admission.Requester, policy admission.Policy, created bool) error {
	guildID := q.GuildID()
	err := p.jobs.StartAsync(expandJob(guildID), func(ctx context.Context) error {
		items, err := p.resolver.ResolvePlaylist(ctx, listID)
		if err != nil {
			p.notifier.SongRejected(q.TextChannel(), err)
			p.abandonIfEmpty(q, created)
			return err
		}

		accepted := 0
		for item := range items {
			if item.Err != nil {
				log.Printf("[Player] Playlist entry failed for guild %s: %v", guildID, item.Err)
				continue
			}
			song, err := admission.TryEnqueue(q, item.Media, by, policy)
			if err != nil {
				p.notifier.SongRejected(q.TextChannel(), err)
				continue
			}
			p.notifier.SongAdded(q.TextChannel(), song)
			accepted++
			if accepted == 1 {
				p.startHead(q)
			}
		}

		if accepted == 0 {
			p.abandonIfEmpty(q, created)
			return ErrNoneAdded
		}
		return nil
	})
	if err != nil {
		p.abandonIfEmpty(q, created)
		return err
	}
	return nil
}

// abandonIfEmpty tears down a queue this request created but never filled.
func (p *Player) abandonIfEmpty(q *queue.GuildQueue, created bool) {
	if !created {
		return
	}
	if !p.registry.Evict(q.GuildID()) {
		// A concurrent enqueue landed a song first; this request still owns
		// the connect, so it tries to start playback.
		p.startHead(q)
		return
	}
	if sink := q.Sink(); sink != nil {
		sink.Release()
		q.SetSink(nil)
	}
}

// startHead claims the queue's one-time start and begins streaming the head.
// Of all callers racing to start playback exactly one wins the claim; the
// rest return without side effects, so at most one stream exists per guild.
func (p *Player) startHead(q *queue.GuildQueue) {
	if !q.ClaimStart() {
		return
	}
	p.openHead(q)
}

// openHead opens a stream for the queue head. The caller owns the Playing
// state. Songs whose stream cannot be opened are reported and skipped until
// one plays or the queue drains.
func (p *Player) openHead(q *queue.GuildQueue) {
	guildID := q.GuildID()
	for {
		head, ok := q.Head()
		if !ok {
			p.finish(q)
			return
		}

		sink := q.Sink()
		if sink == nil {
			log.Printf("[Player] No sink for guild %s, tearing down", guildID)
			p.registry.Remove(guildID)
			return
		}

		handle, err := sink.OpenStream(head, queue.StreamOptions{Gain: Gain(q.Volume())})
		if err != nil {
			p.notifier.PlaybackFailed(q.TextChannel(), head, err)
			if _, ok := q.Advance(); !ok {
				p.finish(q)
				return
			}
			continue
		}

		head.SetHandle(handle)
		p.votes.Clear(guildID)
		p.notifier.PlaybackStarted(q.TextChannel(), head)
		go p.monitor(q, head, handle)
		return
	}
}

// monitor waits for the current stream to end and advances the queue. A
// user-initiated stop leaves teardown to Stop itself.
func (p *Player) monitor(q *queue.GuildQueue, song *queue.Song, handle queue.StreamControl) {
	err := <-handle.Done()
	song.SetHandle(nil)

	if err != nil {
		log.Printf("[Player] Stream for %q ended with error: %v", song.Title, err)
		p.notifier.PlaybackFailed(q.TextChannel(), song, err)
	}
	if q.StoppedByUser() {
		return
	}

	if serr := q.SetState(queue.StateAdvancing); serr != nil {
		log.Printf("[Player] %v", serr)
	}
	if _, ok := q.Advance(); ok {
		if serr := q.SetState(queue.StatePlaying); serr != nil {
			log.Printf("[Player] %v", serr)
		}
		p.openHead(q)
	} else {
		p.finish(q)
	}
}

// finish ends playback for a drained queue. When a concurrent enqueue landed
// a song between the last advance and eviction, playback resumes instead.
func (p *Player) finish(q *queue.GuildQueue) {
	guildID := q.GuildID()
	p.jobs.Stop(expandJob(guildID))
	p.votes.Clear(guildID)

	if !p.registry.Evict(guildID) {
		if _, ok := q.Head(); ok {
			if q.State() != queue.StatePlaying {
				if err := q.SetState(queue.StatePlaying); err != nil {
					log.Printf("[Player] %v", err)
				}
			}
			p.openHead(q)
			return
		}
		p.registry.Remove(guildID)
	}

	if err := q.SetState(queue.StateIdle); err != nil {
		log.Printf("[Player] %v", err)
	}
	if sink := q.Sink(); sink != nil {
		sink.Release()
		q.SetSink(nil)
	}
	if !q.StoppedByUser() {
		p.notifier.QueueExhausted(q.TextChannel())
	}
}

// Pause suspends the current stream.
func (p *Player) Pause(guildID string) error {
	q, ok := p.registry.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if q.State() != queue.StatePlaying {
		return ErrNotPlaying
	}
	head, ok := q.Head()
	if !ok {
		return ErrNotPlaying
	}
	handle := head.Handle()
	if handle == nil {
		return ErrNoStream
	}
	if err := q.SetState(queue.StatePaused); err != nil {
		return err
	}
	handle.Pause()
	return nil
}

// Resume continues a paused stream.
func (p *Player) Resume(guildID string) error {
	q, ok := p.registry.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	if q.State() != queue.StatePaused {
		return ErrNotPaused
	}
	head, ok := q.Head()
	if !ok {
		return ErrNotPaused
	}
	handle := head.Handle()
	if handle == nil {
		return ErrNoStream
	}
	if err := q.SetState(queue.StatePlaying); err != nil {
		return err
	}
	handle.Resume()
	return nil
}

// Skip ends the current song immediately; the monitor goroutine advances.
func (p *Player) Skip(guildID string) error {
	q, ok := p.registry.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	head, ok := q.Head()
	if !ok {
		return ErrNotPlaying
	}
	handle := head.Handle()
	if handle == nil {
		return ErrNoStream
	}
	p.votes.Clear(guildID)
	handle.Stop()
	return nil
}

// VoteResult is the outcome of one skip vote.
type VoteResult struct {
	Skipped bool
	Votes   int
	Needed  int
	Title   string
}

// VoteSkip casts a skip vote. The song's requester and the operator skip
// instantly; everyone else needs a majority of the current voice listeners.
func (p *Player) VoteSkip(guildID, userID string, listeners int) (VoteResult, error) {
	q, ok := p.registry.Get(guildID)
	if !ok {
		return VoteResult{}, ErrNoQueue
	}
	head, ok := q.Head()
	if !ok {
		return VoteResult{}, ErrNotPlaying
	}

	policy, _ := p.policies.MusicPolicy(guildID)
	if userID == head.RequestedBy || (policy.OperatorID != "" && userID == policy.OperatorID) {
		if err := p.Skip(guildID); err != nil {
			return VoteResult{}, err
		}
		return VoteResult{Skipped: true, Title: head.Title}, nil
	}

	needed := listeners/2 + 1
	count := p.votes.Cast(guildID, head.ID, userID)
	if count >= needed {
		if err := p.Skip(guildID); err != nil {
			return VoteResult{}, err
		}
		return VoteResult{Skipped: true, Votes: count, Needed: needed, Title: head.Title}, nil
	}
	return VoteResult{Votes: count, Needed: needed, Title: head.Title}, nil
}

// Stop halts playback, clears the queue and leaves the voice channel. The
// queue-exhausted announcement is suppressed on an explicit stop.
func (p *Player) Stop(guildID string) error {
	q, ok := p.registry.Get(guildID)
	if !ok {
		return ErrNoQueue
	}

	q.MarkStopped()
	p.jobs.Stop(expandJob(guildID))
	p.votes.Clear(guildID)

	if head, ok := q.Head(); ok {
		if handle := head.Handle(); handle != nil {
			handle.Stop()
		}
	}

	p.registry.Remove(guildID)
	if err := q.SetState(queue.StateIdle); err != nil {
		log.Printf("[Player] %v", err)
	}
	if sink := q.Sink(); sink != nil {
		sink.Release()
		q.SetSink(nil)
	}
	log.Printf("[Player] Stopped playback for guild %s", guildID)
	return nil
}

// SetVolume changes the guild's volume level, applying it to the running
// stream immediately.
func (p *Player) SetVolume(guildID string, level float64) error {
	q, ok := p.registry.Get(guildID)
	if !ok {
		return ErrNoQueue
	}
	q.SetVolume(level)
	if head, ok := q.Head(); ok {
		if handle := head.Handle(); handle != nil {
			handle.SetVolume(Gain(level))
		}
	}
	return nil
}

// Queue returns the guild's queue for read-only inspection.
func (p *Player) Queue(guildID string) (*queue.GuildQueue, bool) {
	return p.registry.Get(guildID)
}

func expandJob(guildID string) string {
	return "expand:" + guildID
}

// Gain maps a 1-10 volume level to a linear amplitude multiplier. Level 5 is
// unity; the curve is logarithmic so each step sounds like an even change.
func Gain(level float64) float64 {
	if level <= 0 {
		return 0
	}
	return math.Pow(level/5, 1.660964)
}
