package state

import "sync"

type entry[T any] struct {
	mu   sync.Mutex
	refs int
	sess Session[T]
}

type memoryManager[T any] struct {
	mu      sync.Mutex
	entries map[int64]*entry[T]
}

// NewMemoryManager constructs an in-memory Manager. Sessions do not survive restarts.
func NewMemoryManager[T any]() Manager[T] {
	return &memoryManager[T]{
		entries: make(map[int64]*entry[T]),
	}
}

func (m *memoryManager[T]) acquire(userID int64) *entry[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID]
	if !ok {
		e = &entry[T]{sess: Session[T]{State: StateIdle}}
		m.entries[userID] = e
	}
	e.refs++
	return e
}

func (m *memoryManager[T]) release(userID int64, e *entry[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	// e.mu is released by now; waiters hold a ref so refs==0 means nobody will touch e.
	if e.refs == 0 && e.sess.State == StateIdle && m.entries[userID] == e {
		delete(m.entries, userID)
	}
}

// Do serialises access to a single user's session.
func (m *memoryManager[T]) Do(userID int64, fn func(s *Session[T]) error) error {
	e := m.acquire(userID)
	e.mu.Lock()
	err := fn(&e.sess)
	if e.sess.State == "" {
		e.sess.State = StateIdle
	}
	e.mu.Unlock()
	m.release(userID, e)
	return err
}

// Snapshot copies the session without holding it across calls.
func (m *memoryManager[T]) Snapshot(userID int64) (Session[T], bool) {
	m.mu.Lock()
	e, ok := m.entries[userID]
	if !ok {
		m.mu.Unlock()
		return Session[T]{State: StateIdle}, false
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
	snap := e.sess
	e.mu.Unlock()
	m.release(userID, e)
	return snap, snap.State != StateIdle
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager[T]) GetState(userID int64) State {
	snap, _ := m.Snapshot(userID)
	return snap.State
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager[T]) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// Clear resets the user's session; it is dropped once no update holds it.
func (m *memoryManager[T]) Clear(userID int64) {
	_ = m.Do(userID, func(s *Session[T]) error {
		s.Reset()
		return nil
	})
}

// Len reports the number of tracked sessions.
func (m *memoryManager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
