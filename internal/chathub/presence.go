package chathub

import (
	"sort"
	"sync"
)

// Registry maps an online user id to its single live connection. A new
// connection for the same user replaces the previous one.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Client)}
}

// Register stores client as the live connection of userID. It returns the
// connection it replaced (nil if none) and the online set after the change.
func (r *Registry) Register(userID string, client Client) (previous Client, online []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous = r.conns[userID]
	r.conns[userID] = client
	return previous, r.onlineLocked()
}

// Unregister removes userID. It reports whether an entry was removed.
func (r *Registry) Unregister(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[userID]; !ok {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Release removes userID only while client is still its live connection, so a
// replaced connection shutting down late cannot evict its successor.
func (r *Registry) Release(userID string, client Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[userID]; !ok || current != client {
		return false
	}
	delete(r.conns, userID)
	return true
}

// ListOnline returns the sorted ids of all online users.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onlineLocked()
}

// Connection returns the live connection of userID.
func (r *Registry) Connection(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// Clients returns a snapshot of every live connection.
func (r *Registry) Clients() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Client, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Reset drops every entry and returns the connections that were live.
func (r *Registry) Reset() []Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Client, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	r.conns = make(map[string]Client)
	return out
}

func (r *Registry) onlineLocked() []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
