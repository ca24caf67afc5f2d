package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
)

const maxIDAttempts = 16

var (
	ErrGameNotFound    = service.ErrGameNotFound
	ErrGameExists      = service.ErrGameExists
	ErrInvalidScenario = errors.New("scenario is required")
)

// Manager stores live games keyed by their case-insensitive id
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// Create builds a game from the scenario and stores it. An empty id is
// replaced by a generated one.
func (m *Manager) Create(id string, scenario *engine.Scenario, opts ...engine.Option) (*service.Session, error) {
	if scenario == nil {
		return nil, ErrInvalidScenario
	}

	// Build outside the lock; placement can be slow on large boards
	game, err := engine.NewGameFromScenario(scenario, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateID()
	} else if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, fmt.Errorf("game %s: %w", id, ErrGameExists)
	}

	sess := service.NewSession(id, game, scenario.Name)
	m.sessions[strings.ToLower(id)] = sess
	return sess, nil
}

// Get retrieves a game by id (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrGameNotFound
	}
	return sess, nil
}

// List returns every live game
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Delete removes a game
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrGameNotFound
	}
	delete(m.sessions, key)
	return nil
}

// DeleteAll removes every game and returns how many there were
func (m *Manager) DeleteAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.sessions)
	m.sessions = make(map[string]*service.Session)
	return n
}

// UpdateLastAccessed marks a game as accessed now
func (m *Manager) UpdateLastAccessed(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	sess.Touch()
	return nil
}

// CleanupExpiredSessions removes games that haven't been accessed within maxAge
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, sess := range m.sessions {
		if sess.LastAccessedAt().Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of live games
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateID returns an unused 4-character hex id, falling back to a uuid
// when the short space keeps colliding. Callers hold the write lock.
func (m *Manager) generateID() string {
	bytes := make([]byte, 2)
	for i := 0; i < maxIDAttempts; i++ {
		if _, err := rand.Read(bytes); err != nil {
			break
		}
		id := hex.EncodeToString(bytes)
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
	return uuid.NewString()
}
