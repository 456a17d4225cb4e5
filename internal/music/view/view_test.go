package view

import (
	"fmt"
	"testing"
	"time"

	"jukebox/internal/music/queue"
)

type fixedHandle struct{ elapsed time.Duration }

func (f *fixedHandle) Pause()                 {}
func (f *fixedHandle) Resume()                {}
func (f *fixedHandle) Stop()                  {}
func (f *fixedHandle) SetVolume(gain float64) {}
func (f *fixedHandle) Elapsed() time.Duration { return f.elapsed }
func (f *fixedHandle) Done() <-chan error     { return nil }

func fill(t *testing.T, q *queue.GuildQueue, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := q.Offer(&queue.Song{
			ID:       fmt.Sprintf("song%07d", i),
			Title:    fmt.Sprintf("Track %d", i),
			Duration: 3 * time.Minute,
		}, nil)
		if err != nil {
			t.Fatalf("offer %d: %v", i, err)
		}
	}
}

func TestProjectPagination(t *testing.T) {
	q, _ := queue.NewRegistry().Create("g1", "voice", "text", 5)
	fill(t, q, 12)

	p := Project(q, 1)
	if p.Now == nil || p.Now.Title != "Track 0" {
		t.Fatalf("now playing = %+v", p.Now)
	}
	if p.Pages != 3 {
		t.Fatalf("pages = %d, want 3", p.Pages)
	}
	// The playing head is entry 1 of page 1.
	if len(p.Entries) != 5 || p.Entries[0].Position != 1 || p.Entries[0].Title != "Track 0" {
		t.Fatalf("page 1 entries = %+v", p.Entries)
	}

	p = Project(q, 3)
	if len(p.Entries) != 2 || p.Entries[0].Position != 11 || p.Entries[1].Position != 12 {
		t.Fatalf("page 3 entries = %+v", p.Entries)
	}
}

func TestPageCountCoversWholeQueue(t *testing.T) {
	q, _ := queue.NewRegistry().Create("g1", "voice", "text", 5)
	fill(t, q, 6)

	p := Project(q, 1)
	if p.Pages != 2 {
		t.Fatalf("pages = %d, want 2 for 6 songs", p.Pages)
	}
	if p := Project(q, 2); len(p.Entries) != 1 || p.Entries[0].Position != 6 {
		t.Fatalf("page 2 entries = %+v", p.Entries)
	}
}

func TestProjectClampsPage(t *testing.T) {
	q, _ := queue.NewRegistry().Create("g1", "voice", "text", 5)
	fill(t, q, 3)

	if p := Project(q, 0); p.Page != 1 {
		t.Fatalf("page 0 clamped to %d", p.Page)
	}
	if p := Project(q, 99); p.Page != 1 {
		t.Fatalf("page 99 clamped to %d, want 1", p.Page)
	}
}

func TestProjectEmptyQueue(t *testing.T) {
	q, _ := queue.NewRegistry().Create("g1", "voice", "text", 5)
	p := Project(q, 1)
	if p.Now != nil || len(p.Entries) != 0 || p.Pages != 1 {
		t.Fatalf("empty projection = %+v", p)
	}
}

func TestProjectProgress(t *testing.T) {
	q, _ := queue.NewRegistry().Create("g1", "voice", "text", 5)
	fill(t, q, 1)
	head, _ := q.Head()
	head.SetHandle(&fixedHandle{elapsed: time.Minute})

	p := Project(q, 1)
	if p.Now.Elapsed != time.Minute {
		t.Fatalf("elapsed = %v", p.Now.Elapsed)
	}
	if p.Now.Remaining != 2*time.Minute {
		t.Fatalf("remaining = %v", p.Now.Remaining)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                "0:00",
		65 * time.Second: "1:05",
		time.Hour + 2*time.Minute + 3*time.Second: "1:02:03",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}
