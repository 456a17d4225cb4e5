// Package admission decides whether a resolved media item may join a guild
// queue. Checks run atomically against the queue contents so concurrent
// requests cannot both slip past the per-user quota.
package admission

import (
	"fmt"
	"time"

	"jukebox/internal/music/queue"
	"jukebox/internal/music/resolver"
)

// Reason is why an item was refused.
type Reason int

const (
	ReasonLivestream Reason = iota
	ReasonTooLong
	ReasonDuplicate
	ReasonQuota
)

// Rejection carries a user-presentable refusal. It implements error so it can
// travel through queue.Offer verdicts.
type Rejection struct {
	Reason Reason
	Title  string
	msg    string
}

func (r *Rejection) Error() string { return r.msg }

// Policy is the per-guild admission configuration. Zero values disable the
// corresponding limit.
type Policy struct {
	MaxSongDuration time.Duration
	MaxSongsPerUser int
	OperatorID      string
}

// Requester identifies who asked for a song.
type Requester struct {
	ID   string
	Name string
}

// TryEnqueue admits media into q or returns a *Rejection. The operator
// bypasses the length, duplicate and quota limits, never the livestream
// check. The duplicate and quota scans run inside the queue's offer so check
// and append are one step.
func TryEnqueue(q *queue.GuildQueue, media *resolver.MediaItem, by Requester, p Policy) (*queue.Song, error) {
	if media.IsLivestream() {
		return nil, &Rejection{
			Reason: ReasonLivestream,
			Title:  media.Title,
			msg:    fmt.Sprintf("**%s** is a livestream and can't be queued.", media.Title),
		}
	}

	bypass := p.OperatorID != "" && by.ID == p.OperatorID

	if !bypass && p.MaxSongDuration > 0 && media.Duration > p.MaxSongDuration {
		return nil, &Rejection{
			Reason: ReasonTooLong,
			Title:  media.Title,
			msg: fmt.Sprintf("**%s** is longer than the %d minute limit.",
				media.Title, int(p.MaxSongDuration.Minutes())),
		}
	}

	song := &queue.Song{
		ID:            media.ID,
		Title:         media.Title,
		URL:           media.URL,
		Duration:      media.Duration,
		RequestedBy:   by.ID,
		RequesterName: by.Name,
		EnqueuedAt:    time.Now(),
	}

	err := q.Offer(song, func(songs []*queue.Song) error {
		mine := 0
		for _, s := range songs {
			if !bypass && s.ID == media.ID {
				return &Rejection{
					Reason: ReasonDuplicate,
					Title:  media.Title,
					msg:    fmt.Sprintf("**%s** is already in the queue.", media.Title),
				}
			}
			if s.RequestedBy == by.ID {
				mine++
			}
		}
		if !bypass && p.MaxSongsPerUser > 0 && mine >= p.MaxSongsPerUser {
			return &Rejection{
				Reason: ReasonQuota,
				Title:  media.Title,
				msg:    fmt.Sprintf("You already have %d songs in the queue.", p.MaxSongsPerUser),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return song, nil
}
