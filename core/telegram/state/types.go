package state

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	// Sessions left idle after an update are discarded.
	StateIdle State = "idle"
)

// Session stores conversation state and typed data for a user.
type Session[T any] struct {
	State State
	Data  T
}

// Reset returns the session to a fresh idle value.
func (s *Session[T]) Reset() {
	var zero T
	s.State = StateIdle
	s.Data = zero
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager[T any] interface {
	// Do runs fn with exclusive access to the user's session. A session is
	// created on first use and discarded when fn leaves it idle.
	Do(userID int64, fn func(s *Session[T]) error) error
	// Snapshot returns a copy of the user's session and whether it exists.
	Snapshot(userID int64) (Session[T], bool)
	GetState(userID int64) State
	InProgress(userID int64) bool
	Clear(userID int64)
	Len() int
}
