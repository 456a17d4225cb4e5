package resolver

import "regexp"

// QueryKind is how a raw user query will be resolved.
type QueryKind int

const (
	// KindSearch resolves via a best-effort single-result search.
	KindSearch QueryKind = iota
	// KindDirect resolves a video URL or bare id straight to metadata.
	KindDirect
	// KindPlaylist expands a playlist reference into its entries.
	KindPlaylist
)

// Query is a classified user query. Ref holds the playlist id, the video id,
// or the untouched search phrase depending on Kind.
type Query struct {
	Kind QueryKind
	Ref  string
}

var (
	playlistPattern = regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/playlist\?(?:.*&)?list=([a-zA-Z0-9_-]+)`)
	watchPattern    = regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([a-zA-Z0-9_-]{11})`)
	shortPattern    = regexp.MustCompile(`^https?://youtu\.be/([a-zA-Z0-9_-]{11})`)
	bareIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// Classify decides how a raw query should be resolved. Priority order:
// playlist URL, then direct video reference (watch URL, youtu.be, bare id),
// then free-text search.
func Classify(raw string) Query {
	if m := playlistPattern.FindStringSubmatch(raw); m != nil {
		return Query{Kind: KindPlaylist, Ref: m[1]}
	}
	if m := watchPattern.FindStringSubmatch(raw); m != nil {
		return Query{Kind: KindDirect, Ref: m[1]}
	}
	if m := shortPattern.FindStringSubmatch(raw); m != nil {
		return Query{Kind: KindDirect, Ref: m[1]}
	}
	if bareIDPattern.MatchString(raw) {
		return Query{Kind: KindDirect, Ref: raw}
	}
	return Query{Kind: KindSearch, Ref: raw}
}
