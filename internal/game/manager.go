package game

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Manager holds sessions by id. Safe for concurrent use; each session is
// still owned by one caller at a time.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// NewGame starts and registers a session on a board of the given size.
func (m *Manager) NewGame(size int) (*Session, error) {
	s, err := NewSession(size)
	if err != nil {
		return nil, err
	}
	m.Add(s)
	return s, nil
}

// Add registers a session built elsewhere, such as one set up from a FEN.
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Debug().Str("id", s.ID).Int("size", s.Size()).Msg("game started")
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove forgets a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
