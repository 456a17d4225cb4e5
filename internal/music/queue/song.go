package queue

import (
	"sync"
	"time"
)

// StreamControl is the live handle onto a playing stream. The playback engine
// sets it on a Song when audio starts flowing and clears it when the stream
// ends; pause/resume/skip are only valid while a handle is present.
type StreamControl interface {
	Pause()
	Resume()
	Stop()
	SetVolume(gain float64)
	Elapsed() time.Duration
	Done() <-chan error
}

// Song is one queued track: immutable media identity plus mutable playback
// annotations. A Song belongs to exactly one GuildQueue.
type Song struct {
	ID       string
	Title    string
	URL      string
	Duration time.Duration

	RequestedBy   string
	RequesterName string
	EnqueuedAt    time.Time

	mu     sync.Mutex
	handle StreamControl
}

// SetHandle attaches or clears (nil) the stream control handle.
func (s *Song) SetHandle(h StreamControl) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = h
}

// Handle returns the current stream control handle, or nil when the song is
// not being streamed.
func (s *Song) Handle() StreamControl {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Streaming reports whether the song currently has an active stream.
func (s *Song) Streaming() bool {
	return s.Handle() != nil
}
