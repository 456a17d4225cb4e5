// Package votes counts skip votes per guild. A vote round is bound to the
// song it was opened for and expires after a fixed window, so stale votes
// never skip a later track.
package votes

import (
	"sync"
	"time"
)

// Window is how long a vote round stays valid after its first vote.
const Window = 15 * time.Second

type round struct {
	songID   string
	openedAt time.Time
	voters   map[string]struct{}
}

// Tracker holds the active vote round per guild. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	rounds map[string]*round
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		rounds: make(map[string]*round),
		now:    time.Now,
	}
}

// Cast records a skip vote by userID against songID and returns the current
// vote count. A vote for a different song than the active round, or a vote
// after the window elapsed, starts a fresh round. Double votes by the same
// user count once.
func (t *Tracker) Cast(guildID, songID, userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.rounds[guildID]
	if r == nil || r.songID != songID || t.now().Sub(r.openedAt) > Window {
		r = &round{
			songID:   songID,
			openedAt: t.now(),
			voters:   make(map[string]struct{}),
		}
		t.rounds[guildID] = r
	}
	r.voters[userID] = struct{}{}
	return len(r.voters)
}

// Count returns the number of valid votes for songID in guildID.
func (t *Tracker) Count(guildID, songID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := t.rounds[guildID]
	if r == nil || r.songID != songID || t.now().Sub(r.openedAt) > Window {
		return 0
	}
	return len(r.voters)
}

// Clear drops the guild's vote round. Called when playback moves to the next
// song or stops.
func (t *Tracker) Clear(guildID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rounds, guildID)
}
