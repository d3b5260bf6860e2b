/*
Package chat contains the real-time core of the messaging server.

This file defines the Registry, the in-memory bidirectional mapping between a
user identity and its live connections. It is the single piece of mutable
shared state in the core; all mutation goes through Add and Remove.
*/
package chat

import "sync"

// Registry maps a user id to the set of that user's live connections.
// A user appears in the map if and only if they hold at least one live
// connection; the entry is deleted, not cleared, when the set empties.
// One user may hold several connections at once (multiple tabs or devices).
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[*Client]struct{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]map[*Client]struct{}),
	}
}

// Add registers a live connection for the user. Adding the same connection
// twice has no additional effect.
func (reg *Registry) Add(userID string, c *Client) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	set, ok := reg.conns[userID]
	if !ok {
		set = make(map[*Client]struct{})
		reg.conns[userID] = set
	}

	set[c] = struct{}{}
}

// Remove deregisters one connection. It reports whether the connection was
// actually present (removed) and whether the user now has no connections left
// (wentOffline). Removing an absent connection is a no-op, never an error,
// which makes duplicate disconnect signals idempotent.
func (reg *Registry) Remove(userID string, c *Client) (removed, wentOffline bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	set, ok := reg.conns[userID]
	if !ok {
		return false, false
	}

	if _, ok := set[c]; !ok {
		return false, false
	}

	delete(set, c)

	if len(set) == 0 {
		delete(reg.conns, userID)
		return true, true
	}

	return true, false
}

// IsOnline reports whether the user currently holds at least one live connection.
func (reg *Registry) IsOnline(userID string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.conns[userID]) > 0
}

// ListOnline returns a snapshot of all user ids with at least one live connection.
func (reg *Registry) ListOnline() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	ids := make([]string, 0, len(reg.conns))
	for id := range reg.conns {
		ids = append(ids, id)
	}

	return ids
}

// HandlesFor returns a snapshot of the user's live connections. The snapshot
// may contain connections that close between the call and delivery; callers
// must tolerate per-connection delivery failure.
func (reg *Registry) HandlesFor(userID string) []*Client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	set := reg.conns[userID]
	handles := make([]*Client, 0, len(set))
	for c := range set {
		handles = append(handles, c)
	}

	return handles
}

// AllHandles returns a snapshot of every live connection across all users.
func (reg *Registry) AllHandles() []*Client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	handles := make([]*Client, 0)
	for _, set := range reg.conns {
		for c := range set {
			handles = append(handles, c)
		}
	}

	return handles
}
