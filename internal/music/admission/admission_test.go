package admission

import (
	"errors"
	"testing"
	"time"

	"jukebox/internal/music/queue"
	"jukebox/internal/music/resolver"
)

func testPolicy() Policy {
	return Policy{
		MaxSongDuration: 10 * time.Minute,
		MaxSongsPerUser: 2,
		OperatorID:      "op",
	}
}

func media(id string, d time.Duration) *resolver.MediaItem {
	return &resolver.MediaItem{ID: id, Title: "song " + id, URL: "https://www.youtube.com/watch?v=" + id, Duration: d}
}

func testQueue() *queue.GuildQueue {
	q, _ := queue.NewRegistry().Create("g1", "voice", "text", 5)
	return q
}

func rejectionReason(t *testing.T, err error) Reason {
	t.Helper()
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected *Rejection, got %v", err)
	}
	return rej.Reason
}

func TestLivestreamRejected(t *testing.T) {
	q := testQueue()
	_, err := TryEnqueue(q, media("live1234567", 0), Requester{ID: "op"}, testPolicy())
	if rejectionReason(t, err) != ReasonLivestream {
		t.Fatalf("expected livestream rejection, got %v", err)
	}
}

func TestDurationLimit(t *testing.T) {
	q := testQueue()
	_, err := TryEnqueue(q, media("longsong123", 11*time.Minute), Requester{ID: "u1"}, testPolicy())
	if rejectionReason(t, err) != ReasonTooLong {
		t.Fatalf("expected too-long rejection, got %v", err)
	}

	// The operator is not bound by the length limit.
	if _, err := TryEnqueue(q, media("longsong123", 11*time.Minute), Requester{ID: "op"}, testPolicy()); err != nil {
		t.Fatalf("operator enqueue: %v", err)
	}
}

func TestDuplicateRejected(t *testing.T) {
	q := testQueue()
	if _, err := TryEnqueue(q, media("aaaaaaaaaaa", time.Minute), Requester{ID: "u1"}, testPolicy()); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	_, err := TryEnqueue(q, media("aaaaaaaaaaa", time.Minute), Requester{ID: "u2"}, testPolicy())
	if rejectionReason(t, err) != ReasonDuplicate {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestOperatorBypassesDuplicate(t *testing.T) {
	q := testQueue()
	if _, err := TryEnqueue(q, media("aaaaaaaaaaa", time.Minute), Requester{ID: "u1"}, testPolicy()); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if _, err := TryEnqueue(q, media("aaaaaaaaaaa", time.Minute), Requester{ID: "op"}, testPolicy()); err != nil {
		t.Fatalf("operator re-enqueue: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("queue length = %d, want 2", q.Len())
	}
}

func TestPerUserQuota(t *testing.T) {
	p := Policy{MaxSongDuration: 10 * time.Minute, MaxSongsPerUser: 2}
	q := testQueue()
	u := Requester{ID: "u1", Name: "alice"}

	if _, err := TryEnqueue(q, media("aaaaaaaaaaa", 5*time.Minute), u, p); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := TryEnqueue(q, media("bbbbbbbbbbb", 5*time.Minute), u, p); err != nil {
		t.Fatalf("second: %v", err)
	}
	_, err := TryEnqueue(q, media("ccccccccccc", 5*time.Minute), u, p)
	if rejectionReason(t, err) != ReasonQuota {
		t.Fatalf("expected quota rejection, got %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("queue length = %d, want 2", q.Len())
	}
}
