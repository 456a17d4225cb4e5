package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"time"

	youtube "github.com/kkdai/youtube/v2"

	"jukebox/pkg/retrylimit"
)

var (
	ErrNoResult = errors.New("no search results")
)

// MediaItem is canonical playable media metadata. A zero duration marks a
// livestream, which admission rejects.
type MediaItem struct {
	ID       string
	Title    string
	URL      string
	Duration time.Duration
}

func (m *MediaItem) IsLivestream() bool { return m.Duration == 0 }

// Item is one playlist expansion result. Failures travel as values so a bad
// entry never aborts its siblings.
type Item struct {
	Media *MediaItem
	Err   error
}

var searchResultPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

// Resolver turns classified queries into MediaItems using the YouTube data
// endpoints. All network calls are paced through an adaptive limiter.
type Resolver struct {
	yt       *youtube.Client
	http     *http.Client
	limiter  *retrylimit.AdaptiveLimiter
	baseURL  string
	pageSize int
	workers  int
}

// New creates a Resolver. pageSize bounds playlist expansion, workers bounds
// the number of simultaneous per-entry metadata fetches.
func New(pageSize, workers int) *Resolver {
	if pageSize < 1 {
		pageSize = 25
	}
	if workers < 1 {
		workers = 3
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return &Resolver{
		yt:       &youtube.Client{HTTPClient: httpClient},
		http:     httpClient,
		limiter:  retrylimit.NewAdaptiveLimiter(4, 1, 10, 1, 0.5),
		baseURL:  "https://www.youtube.com",
		pageSize: pageSize,
		workers:  workers,
	}
}

// Classify delegates to the package classifier; kept as a method so callers
// only depend on the Resolver.
func (r *Resolver) Classify(raw string) Query {
	return Classify(raw)
}

// ResolveDirect fetches full metadata for one video id or URL.
func (r *Resolver) ResolveDirect(ctx context.Context, ref string) (*MediaItem, error) {
	var video *youtube.Video
	err := retrylimit.WithRetry(ctx, r.limiter, 3, func() error {
		v, err := r.yt.GetVideoContext(ctx, ref)
		if err != nil {
			return err
		}
		video = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}

	return &MediaItem{
		ID:       video.ID,
		Title:    video.Title,
		URL:      watchURL(video.ID),
		Duration: video.Duration,
	}, nil
}

// ResolveSearch issues a single-result search and resolves the hit to full
// metadata.
func (r *Resolver) ResolveSearch(ctx context.Context, text string) (*MediaItem, error) {
	id, err := r.searchFirstID(ctx, text)
	if err != nil {
		return nil, err
	}
	return r.ResolveDirect(ctx, id)
}

// ResolvePlaylist expands a playlist into an ordered, lazily produced stream
// of items. Entries beyond the page size are dropped. Per-entry metadata is
// fetched on a bounded worker pool; delivery order matches playlist order, so
// the consumer can start on the first item while later ones still resolve.
func (r *Resolver) ResolvePlaylist(ctx context.Context, listID string) (<-chan Item, error) {
	var playlist *youtube.Playlist
	err := retrylimit.WithRetry(ctx, r.limiter, 3, func() error {
		p, err := r.yt.GetPlaylistContext(ctx, listID)
		if err != nil {
			return err
		}
		playlist = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve playlist %q: %w", listID, err)
	}

	entries := playlist.Videos
	if len(entries) > r.pageSize {
		log.Printf("[Resolver] Playlist %s truncated to %d of %d entries", listID, r.pageSize, len(entries))
		entries = entries[:r.pageSize]
	}

	slots := make([]chan Item, len(entries))
	for i := range slots {
		slots[i] = make(chan Item, 1)
	}

	sem := make(chan struct{}, r.workers)
	for i, entry := range entries {
		go func(i int, id string) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				slots[i] <- Item{Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			media, err := r.ResolveDirect(ctx, id)
			slots[i] <- Item{Media: media, Err: err}
		}(i, entry.ID)
	}

	out := make(chan Item)
	go func() {
		defer close(out)
		for _, slot := range slots {
			select {
			case item := <-slot:
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// searchFirstID scrapes the results page for the first watch link, the same
// way a browser search lands on its top hit.
func (r *Resolver) searchFirstID(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", r.baseURL, url.QueryEscape(query))

	var id string
	err := retrylimit.WithRetry(ctx, r.limiter, 3, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return &retrylimit.Fatal{Err: err}
		}
		resp, err := r.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("search failed with status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		m := searchResultPattern.FindSubmatch(body)
		if m == nil {
			return &retrylimit.Fatal{Err: ErrNoResult}
		}
		id = string(m[1])
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
