package session

import "sync"

// Store owns all conversation states, keyed by telegram user id, with an
// exclusive per-user lock. All transitions for one user run strictly
// sequentially; different users proceed concurrently.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

func (s *Store) entryFor(telegramID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[telegramID]
	if !ok {
		e = &entry{state: State{Kind: Idle}}
		s.entries[telegramID] = e
	}
	return e
}

// Acquire takes the user's exclusive lock and returns the release func.
// Callers must hold the lock for the whole inbound-message exchange so a
// concurrent reminder read never interleaves with a state transition.
func (s *Store) Acquire(telegramID int64) func() {
	e := s.entryFor(telegramID)
	e.mu.Lock()
	return e.mu.Unlock
}

// Get returns the current state for a user (Idle if never seen).
// The caller is expected to hold the user's lock via Acquire.
func (s *Store) Get(telegramID int64) State {
	return s.entryFor(telegramID).state
}

// Set replaces the user's state.
func (s *Store) Set(telegramID int64, st State) {
	s.entryFor(telegramID).state = st
}

// Reset returns the user to Idle.
func (s *Store) Reset(telegramID int64) {
	s.Set(telegramID, State{Kind: Idle})
}
