// File: transport/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The server-side session registry (spec.md §3 "map{Id→Session}", §4.8,
// §5 "read-write lock: readers (Multicast iteration) take a snapshot").
// Grounded on the teacher's go.mod dependency github.com/eapache/queue:
// Multicast and DisconnectAll drain a queue.Queue snapshot so no I/O ever
// runs while the registry's RWMutex is held.

package transport

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/momentics/netcore/id"
)

// Registry tracks the sessions currently attached to a server. A session
// appears in the registry iff its state is connected or handshaking
// (spec.md §3 invariant); it is removed before OnDisconnected fires.
type Registry[S any] struct {
	mu       sync.RWMutex
	sessions map[id.Id]S
}

// NewRegistry creates an empty registry.
func NewRegistry[S any]() *Registry[S] {
	return &Registry[S]{sessions: make(map[id.Id]S)}
}

// Add registers a session under its Id.
func (r *Registry[S]) Add(sid id.Id, s S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = s
}

// Remove unregisters a session. Safe to call more than once.
func (r *Registry[S]) Remove(sid id.Id) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
}

// Get looks up a session by Id.
func (r *Registry[S]) Get(sid id.Id) (S, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	return s, ok
}

// Len returns the number of registered sessions.
func (r *Registry[S]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot copies the current sessions into a FIFO queue and releases the
// registry lock before returning, so Multicast/DisconnectAll never hold
// the map lock across I/O.
func (r *Registry[S]) Snapshot() *queue.Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := queue.New()
	for _, s := range r.sessions {
		q.Add(s)
	}
	return q
}

// Each drains a Snapshot, invoking fn for every session outside the
// registry lock.
func (r *Registry[S]) Each(fn func(S)) {
	q := r.Snapshot()
	for q.Length() > 0 {
		v := q.Remove()
		fn(v.(S))
	}
}
