// Package observable provides listener registries that do not keep their
// listeners alive.
package observable

import (
	"sync"
	"weak"
)

// Registry holds weak references to listeners of type L.
// A listener that is no longer referenced elsewhere is dropped on the next
// Register, ForEach or Len call.
type Registry[L any] struct {
	mu      sync.Mutex
	entries []weak.Pointer[L]
}

// NewRegistry creates an empty registry
func NewRegistry[L any]() *Registry[L] {
	return &Registry[L]{}
}

// Register adds a listener. Registering the same listener twice is a no-op.
func (r *Registry[L]) Register(l *L) {
	if l == nil {
		return
	}

	wp := weak.Make(l)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	for _, e := range r.entries {
		if e == wp {
			return
		}
	}
	r.entries = append(r.entries, wp)
}

// Unregister removes a listener
func (r *Registry[L]) Unregister(l *L) {
	if l == nil {
		return
	}

	wp := weak.Make(l)

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	for _, e := range r.entries {
		if e != wp && e.Value() != nil {
			kept = append(kept, e)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
}

// ForEach calls fn for every live listener. It works on a snapshot, so fn may
// register or unregister listeners.
func (r *Registry[L]) ForEach(fn func(*L)) {
	for _, l := range r.snapshot() {
		fn(l)
	}
}

// Len returns the number of live listeners
func (r *Registry[L]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	return len(r.entries)
}

func (r *Registry[L]) snapshot() []*L {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := make([]*L, 0, len(r.entries))
	kept := r.entries[:0]
	for _, e := range r.entries {
		if l := e.Value(); l != nil {
			live = append(live, l)
			kept = append(kept, e)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept

	return live
}

func (r *Registry[L]) pruneLocked() {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.Value() != nil {
			kept = append(kept, e)
		}
	}
	clear(r.entries[len(kept):])
	r.entries = kept
}
