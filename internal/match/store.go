package match

import (
	"sync"

	"github.com/google/uuid"
)

// Store manages active matches in memory, keyed by room id.
type Store struct {
	mu      sync.Mutex
	matches map[uuid.UUID]*Match
}

func NewStore() *Store {
	return &Store{
		matches: make(map[uuid.UUID]*Match),
	}
}

func (s *Store) Add(m *Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.RoomID] = m
}

func (s *Store) Get(roomID uuid.UUID) (*Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[roomID]
	return m, ok
}

func (s *Store) Delete(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, roomID)
}
