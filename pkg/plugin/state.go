package plugin

import "sync"

// SessionState keeps one value per session for a shared plug-in instance
type SessionState[T any] struct {
	mu     sync.Mutex
	items  map[string]*T
	create func() T
}

// NewSessionState creates a state map; create builds the initial value for a
// session seen for the first time.
func NewSessionState[T any](create func() T) *SessionState[T] {
	return &SessionState[T]{items: make(map[string]*T), create: create}
}

// Do runs fn with the session's value while holding the lock
func (s *SessionState[T]) Do(sessionID string, fn func(state *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[sessionID]
	if !ok {
		initial := s.create()
		v = &initial
		s.items[sessionID] = v
	}
	fn(v)
}

// Take removes and returns the session's value
func (s *SessionState[T]) Take(sessionID string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[sessionID]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.items, sessionID)
	return *v, true
}

// Reset discards the session's value
func (s *SessionState[T]) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
}

// Len returns the number of sessions holding state
func (s *SessionState[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
