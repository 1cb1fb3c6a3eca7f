package session

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/hanziflash/internal/logger"
)

// Manager keeps the open sessions of a host. All sessions share the clip
// cache behind deps.Builder.
type Manager struct {
	deps Deps
	log  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(deps Deps) *Manager {
	deps.Rand = nil
	return &Manager{
		deps:     deps,
		log:      logger.Default().WithPrefix("sessions"),
		sessions: make(map[string]*Session),
	}
}

// Open creates a session on the given batch.
func (m *Manager) Open(ctx context.Context, group string, batch int) (*Session, error) {
	s := New(uuid.NewString(), m.deps)
	if err := s.SwitchBatch(ctx, group, batch); err != nil {
		s.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.log.Info("session %s opened (%d active)", s.ID(), n)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// IDs returns the open session ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops and forgets one session.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	m.log.Info("session %s closed", id)
	return true
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.log.Info("closed %d sessions", len(sessions))
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
