package state

import "sync"

// Change describes one applied dispatch.
type Change struct {
	Version uint64
	Action  Action
	Prev    State
	Next    State
}

// Listener observes dispatches. Listeners run synchronously, in registration
// order, while the store is locked, so they see changes in version order.
// A listener must not dispatch to the store it is attached to.
type Listener func(Change)

// Store is a state container for one session. Dispatches are serialised:
// each runs to completion before the next starts.
type Store struct {
	mu        sync.Mutex
	state     State
	version   uint64
	listeners []Listener
}

// NewStore creates a store holding the initial state.
func NewStore(listeners ...Listener) *Store {
	return NewStoreFrom(Initial(), 0, listeners...)
}

// NewStoreFrom creates a store resuming from a known state and version, for
// example one rebuilt with Replay.
func NewStoreFrom(s State, version uint64, listeners ...Listener) *Store {
	return &Store{state: s, version: version, listeners: listeners}
}

// Subscribe adds a listener for subsequent dispatches.
func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	return s.Apply(a).Next
}

// Apply is Dispatch returning the full change, so callers can diff the
// states on either side of their own action.
func (s *Store) Apply(a Action) Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(a)
}

// ApplyIf applies a only if guard accepts the current state. The guard runs
// under the same lock as the dispatch, so no other dispatch can land between
// the check and the change. A rejected action is not applied and listeners
// are not called.
func (s *Store) ApplyIf(guard func(State) bool, a Action) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !guard(s.state) {
		return Change{Version: s.version, Prev: s.state, Next: s.state}, false
	}
	return s.apply(a), true
}

// IsAuthenticated is an ApplyIf guard for actions that need a user.
func IsAuthenticated(st State) bool {
	return st.Authenticated && st.User != nil
}

func (s *Store) apply(a Action) Change {
	prev := s.state
	s.state = Reduce(prev, a)
	s.version++

	change := Change{Version: s.version, Action: a, Prev: prev, Next: s.state}
	for _, l := range s.listeners {
		l(change)
	}
	return change
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version counts dispatches applied so far. Derived views keyed by version
// stay valid until the next dispatch.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Snapshot returns the state and its version atomically.
func (s *Store) Snapshot() (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.version
}
