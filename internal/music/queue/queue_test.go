package queue

import (
	"sync"
	"testing"
	"time"
)

func TestRegistryCreateIsAtomic(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created := reg.Create("g1", "voice", "text", 5)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if createdCount != 1 {
		t.Fatalf("expected exactly one creator, got %d", createdCount)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one registry entry, got %d", reg.Len())
	}
}

func TestRegistryEvictOnlyWhenEmpty(t *testing.T) {
	reg := NewRegistry()
	q, _ := reg.Create("g1", "voice", "text", 5)

	_ = q.Offer(&Song{ID: "a"}, nil)
	if reg.Evict("g1") {
		t.Fatalf("evicted a non-empty queue")
	}
	if _, ok := reg.Get("g1"); !ok {
		t.Fatalf("entry disappeared")
	}

	q.Advance()
	if !reg.Evict("g1") {
		t.Fatalf("expected eviction of empty queue")
	}
	if _, ok := reg.Get("g1"); ok {
		t.Fatalf("entry still present after evict")
	}
}

func TestOfferVerdictIsAtomic(t *testing.T) {
	reg := NewRegistry()
	q, _ := reg.Create("g1", "voice", "text", 5)

	reject := func(songs []*Song) error {
		for _, s := range songs {
			if s.ID == "dup" {
				return errAlready
			}
		}
		return nil
	}

	if err := q.Offer(&Song{ID: "dup"}, reject); err != nil {
		t.Fatalf("first offer: %v", err)
	}
	if err := q.Offer(&Song{ID: "dup"}, reject); err == nil {
		t.Fatalf("expected duplicate rejection")
	}
	if q.Len() != 1 {
		t.Fatalf("queue length changed on rejected offer: %d", q.Len())
	}
}

var errAlready = &verdictErr{"already queued"}

type verdictErr struct{ msg string }

func (e *verdictErr) Error() string { return e.msg }

func TestAdvance(t *testing.T) {
	q := newGuildQueue("g1", "voice", "text", 5)
	_ = q.Offer(&Song{ID: "a"}, nil)
	_ = q.Offer(&Song{ID: "b"}, nil)

	next, ok := q.Advance()
	if !ok || next.ID != "b" {
		t.Fatalf("expected head b after advance, got %v ok=%v", next, ok)
	}
	if _, ok := q.Advance(); ok {
		t.Fatalf("expected empty queue after second advance")
	}
	if _, ok := q.Advance(); ok {
		t.Fatalf("advance on empty queue must report empty")
	}
}

type fakeSink struct{}

func (fakeSink) OpenStream(*Song, StreamOptions) (StreamControl, error) { return nil, nil }
func (fakeSink) Release()                                               {}

func TestClaimStart(t *testing.T) {
	q := newGuildQueue("g1", "voice", "text", 5)
	if err := q.SetState(StateConnecting); err != nil {
		t.Fatalf("idle -> connecting: %v", err)
	}

	if q.ClaimStart() {
		t.Fatal("claim must fail before the sink is attached")
	}
	q.SetSink(fakeSink{})
	if !q.ClaimStart() {
		t.Fatal("expected claim to succeed")
	}
	if q.ClaimStart() {
		t.Fatal("second claim must fail")
	}
	if q.State() != StatePlaying {
		t.Fatalf("state after claim = %v", q.State())
	}
}

func TestClaimStartSingleWinner(t *testing.T) {
	q := newGuildQueue("g1", "voice", "text", 5)
	if err := q.SetState(StateConnecting); err != nil {
		t.Fatalf("idle -> connecting: %v", err)
	}
	q.SetSink(fakeSink{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.ClaimStart() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one claim winner, got %d", wins)
	}
}

func TestStateTransitions(t *testing.T) {
	q := newGuildQueue("g1", "voice", "text", 5)

	if err := q.SetState(StatePlaying); err == nil {
		t.Fatalf("idle -> playing must be rejected")
	}
	if err := q.SetState(StateConnecting); err != nil {
		t.Fatalf("idle -> connecting: %v", err)
	}
	if err := q.SetState(StatePlaying); err != nil {
		t.Fatalf("connecting -> playing: %v", err)
	}
	if err := q.SetState(StatePaused); err != nil {
		t.Fatalf("playing -> paused: %v", err)
	}
	if err := q.SetState(StateConnecting); err == nil {
		t.Fatalf("paused -> connecting must be rejected")
	}
	if err := q.SetState(StatePlaying); err != nil {
		t.Fatalf("paused -> playing: %v", err)
	}
	if err := q.SetState(StateAdvancing); err != nil {
		t.Fatalf("playing -> advancing: %v", err)
	}
	if err := q.SetState(StateIdle); err != nil {
		t.Fatalf("advancing -> idle: %v", err)
	}
}

func TestTotalDuration(t *testing.T) {
	q := newGuildQueue("g1", "voice", "text", 5)
	_ = q.Offer(&Song{ID: "a", Duration: 3 * time.Minute}, nil)
	_ = q.Offer(&Song{ID: "b", Duration: 90 * time.Second}, nil)

	if got := q.TotalDuration(); got != 4*time.Minute+30*time.Second {
		t.Fatalf("total duration = %v", got)
	}
}
