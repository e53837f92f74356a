package runtime

import (
	"direct-chat/contract"
	"direct-chat/errors"
	"sort"
	"sync"
)

// Registry maps every online username to the sink of its connection.
// All operations are linearised by one mutex and none of them performs I/O,
// so a slow peer can never hold up logins or logouts.
//
// Every membership change bumps a version, so two presence snapshots can
// be ordered by their receivers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]contract.EventSink
	version  uint64
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]contract.EventSink)}
}

// TryAdd binds username to sink only if no session exists for it.
// An existing session is never displaced.
func (r *Registry) TryAdd(username string, sink contract.EventSink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[username]; ok {
		return errors.ErrAlreadyOnline
	}
	r.sessions[username] = sink
	r.version++
	return nil
}

// Remove is idempotent. Removing an absent user leaves the version as is.
func (r *Registry) Remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[username]; !ok {
		return
	}
	delete(r.sessions, username)
	r.version++
}

func (r *Registry) Lookup(username string) (contract.EventSink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sink, ok := r.sessions[username]
	return sink, ok
}

// Snapshot returns the online usernames, sorted.
func (r *Registry) Snapshot() []string {
	_, usernames := r.Presence()
	return usernames
}

// Presence returns the membership version together with the sorted online
// usernames it describes, both read under the same lock.
func (r *Registry) Presence() (uint64, []string) {
	r.mu.Lock()
	version := r.version
	usernames := make([]string, 0, len(r.sessions))
	for username := range r.sessions {
		usernames = append(usernames, username)
	}
	r.mu.Unlock()

	sort.Strings(usernames)
	return version, usernames
}

// Sinks returns a point-in-time copy safe to iterate without the lock.
func (r *Registry) Sinks() map[string]contract.EventSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks := make(map[string]contract.EventSink, len(r.sessions))
	for username, sink := range r.sessions {
		sinks[username] = sink
	}
	return sinks
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
