package client

import "sync"

// OptimisticSet tracks membership with optimistic local updates, mirroring
// how the UI toggles bookmarks: the change shows immediately, the request
// runs after, and a failed request rolls the change back.
type OptimisticSet struct {
	mu        sync.Mutex
	committed map[string]bool
	pending   map[string]bool
}

func NewOptimisticSet(initial []string) *OptimisticSet {
	s := &OptimisticSet{
		committed: make(map[string]bool),
		pending:   make(map[string]bool),
	}
	for _, id := range initial {
		s.committed[id] = true
	}
	return s
}

// Has reports the value the user should see: pending state wins over
// committed state.
func (s *OptimisticSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.pending[id]; ok {
		return v
	}
	return s.committed[id]
}

// Toggle flips membership optimistically and returns the new visible value
// plus a rollback to call if the server request fails. A toggle back to the
// committed value clears the pending entry, so toggle-toggle is a no-op.
func (s *OptimisticSet) Toggle(id string) (value bool, rollback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.committed[id]
	if v, ok := s.pending[id]; ok {
		current = v
	}
	next := !current

	var hadPending bool
	var prevPending bool
	if v, ok := s.pending[id]; ok {
		hadPending = true
		prevPending = v
	}

	if next == s.committed[id] {
		delete(s.pending, id)
	} else {
		s.pending[id] = next
	}

	rollback = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if hadPending {
			s.pending[id] = prevPending
		} else {
			delete(s.pending, id)
		}
	}
	return next, rollback
}

// Commit marks the pending change for id as accepted by the server.
func (s *OptimisticSet) Commit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.pending[id]; ok {
		if v {
			s.committed[id] = true
		} else {
			delete(s.committed, id)
		}
		delete(s.pending, id)
	}
}

// Reset replaces all state with server truth, dropping pending changes.
func (s *OptimisticSet) Reset(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.committed[id] = true
	}
	s.pending = make(map[string]bool)
}

// Items returns the visible membership list.
func (s *OptimisticSet) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id := range s.committed {
		if v, ok := s.pending[id]; ok && !v {
			continue
		}
		out = append(out, id)
	}
	for id, v := range s.pending {
		if v && !s.committed[id] {
			out = append(out, id)
		}
	}
	return out
}
