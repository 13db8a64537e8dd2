package session

import (
	"sync"

	"github.com/ZentaChain/zentalk-session/pkg/observable"
)

// Validator decides whether a session is still the live one
type Validator interface {
	IsValid(s *Session) bool
}

// ChangeListener is notified when the current session is replaced or cleared.
// next is nil on clear.
type ChangeListener struct {
	fn func(prev, next *Session)
}

// NewChangeListener wraps fn as a holder change listener
func NewChangeListener(fn func(prev, next *Session)) *ChangeListener {
	return &ChangeListener{fn: fn}
}

// Holder is the slot for the current session. Sessions are only ever
// replaced, never modified, so identity comparison is enough to validate.
type Holder struct {
	mu      sync.RWMutex
	current *Session
	changes *observable.Registry[ChangeListener]
}

// NewHolder creates an empty holder
func NewHolder() *Holder {
	return &Holder{
		changes: observable.NewRegistry[ChangeListener](),
	}
}

// Changes returns the registry fired on every replacement
func (h *Holder) Changes() *observable.Registry[ChangeListener] {
	return h.changes
}

// Set makes s the current session
func (h *Holder) Set(s *Session) {
	h.mu.Lock()
	prev := h.current
	h.current = s
	h.mu.Unlock()

	if prev != s {
		h.notify(prev, s)
	}
}

// Current returns the current session or nil
func (h *Holder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Clear removes the current session
func (h *Holder) Clear() {
	h.mu.Lock()
	prev := h.current
	h.current = nil
	h.mu.Unlock()

	if prev != nil {
		h.notify(prev, nil)
	}
}

// ClearIf clears the slot only if s is still current. It returns false when
// another session has already replaced s.
func (h *Holder) ClearIf(s *Session) bool {
	if s == nil {
		return false
	}

	h.mu.Lock()
	if h.current != s {
		h.mu.Unlock()
		return false
	}
	h.current = nil
	h.mu.Unlock()

	h.notify(s, nil)
	return true
}

// IsValid reports whether s is the current session
func (h *Holder) IsValid(s *Session) bool {
	if s == nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current == s
}

func (h *Holder) notify(prev, next *Session) {
	h.changes.ForEach(func(l *ChangeListener) {
		l.fn(prev, next)
	})
}
