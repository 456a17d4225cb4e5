// Package view renders read-only queue snapshots for display. It never
// mutates queue state; progress comes from the head song's stream handle.
package view

import (
	"fmt"
	"time"

	"jukebox/internal/music/queue"
)

// PageSize is how many upcoming songs fit on one queue page.
const PageSize = 5

// Entry is one upcoming song row.
type Entry struct {
	Position      int
	Title         string
	URL           string
	Duration      time.Duration
	RequesterName string
}

// NowPlaying describes the head song with live progress when a stream handle
// is attached.
type NowPlaying struct {
	Title     string
	URL       string
	Duration  time.Duration
	Elapsed   time.Duration
	Remaining time.Duration
	Paused    bool
}

// Page is one rendered page of the queue.
type Page struct {
	Now           *NowPlaying
	Entries       []Entry
	Page          int
	Pages         int
	TotalSongs    int
	TotalDuration time.Duration
}

// Project renders page (1-based) of q. Out-of-range pages clamp to the
// nearest valid page. The head song doubles as the now-playing line and the
// first queue entry, so the page arithmetic covers every queued song.
func Project(q *queue.GuildQueue, page int) Page {
	songs := q.Songs()
	state := q.State()

	out := Page{
		TotalSongs:    len(songs),
		TotalDuration: totalDuration(songs),
	}

	if len(songs) > 0 {
		head := songs[0]
		now := &NowPlaying{
			Title:    head.Title,
			URL:      head.URL,
			Duration: head.Duration,
			Paused:   state == queue.StatePaused,
		}
		if h := head.Handle(); h != nil {
			now.Elapsed = h.Elapsed()
			now.Remaining = head.Duration - now.Elapsed
			if now.Remaining < 0 {
				now.Remaining = 0
			}
		}
		out.Now = now
	}

	pages := (len(songs) + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	out.Page = page
	out.Pages = pages

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(songs) {
		end = len(songs)
	}
	for i := start; i < end; i++ {
		s := songs[i]
		out.Entries = append(out.Entries, Entry{
			Position:      i + 1,
			Title:         s.Title,
			URL:           s.URL,
			Duration:      s.Duration,
			RequesterName: s.RequesterName,
		})
	}
	return out
}

func totalDuration(songs []*queue.Song) time.Duration {
	var total time.Duration
	for _, s := range songs {
		total += s.Duration
	}
	return total
}

// FormatDuration renders d as m:ss, or h:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
