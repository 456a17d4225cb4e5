package queue

import "sync"

// Registry maps guild IDs to their queues. Creation is explicit and atomic:
// two concurrent first enqueues for the same guild get the same queue and
// only one of them observes created=true (and therefore opens the transport
// connection). Entries live until drained or explicitly stopped.
type Registry struct {
	mu     sync.Mutex
	queues map[string]*GuildQueue
}

func NewRegistry() *Registry {
	return &Registry{queues: make(map[string]*GuildQueue)}
}

// Get returns the guild's queue if one exists. There is no implicit creation.
func (r *Registry) Get(guildID string) (*GuildQueue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[guildID]
	return q, ok
}

// Create returns the guild's queue, creating it when absent. The second
// return value reports whether this call created the entry.
func (r *Registry) Create(guildID, voiceChannel, textChannel string, volume float64) (*GuildQueue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[guildID]; ok {
		return q, false
	}
	q := newGuildQueue(guildID, voiceChannel, textChannel, volume)
	r.queues[guildID] = q
	return q, true
}

// Remove drops the guild's entry unconditionally.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.queues, guildID)
}

// Evict removes the entry only if its queue is still empty. Used when the
// first admission for a fresh entry is rejected, so a concurrent enqueue
// that already appended a song is not torn down.
func (r *Registry) Evict(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[guildID]
	if !ok || q.Len() > 0 {
		return false
	}
	delete(r.queues, guildID)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}
