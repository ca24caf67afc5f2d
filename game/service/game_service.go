package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrScenarioNotFound = errors.New("scenario not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Game lifecycle
	CreateGame(ctx context.Context, req CreateGameRequest) (*GameSnapshot, error)
	GetGame(ctx context.Context, gameID string) (*GameSnapshot, error)
	ListGames(ctx context.Context, opts ListOptions) ([]*GameSnapshot, error)
	DeleteGame(ctx context.Context, gameID string) error
	DeleteAllGames(ctx context.Context) (int, error)

	// Game operations
	ApplyCommand(ctx context.Context, gameID, robotRef, command string) (*CommandResult, error)
	AddDinosaur(ctx context.Context, gameID string, at *engine.Coordinate) (*DinosaurResult, error)
	GetHistory(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error
}

// SessionManager defines game session storage
type SessionManager interface {
	Create(id string, scenario *engine.Scenario, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	DeleteAll() int
	Count() int
	UpdateLastAccessed(id string) error
}

// ConfigManager handles scenario preset loading
type ConfigManager interface {
	LoadScenario(name string) (*engine.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *engine.Scenario
	SaveScenario(name string, scenario *engine.Scenario) error
}

// Session is one live game and its bookkeeping. The embedded lock serializes
// every command on the game; distinct sessions never contend.
type Session struct {
	ID        string
	Game      *engine.Game
	Scenario  string
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed atomic.Int64
}

// NewSession wraps a game in a session stamped with the current time
func NewSession(id string, game *engine.Game, scenario string) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Game:      game,
		Scenario:  scenario,
		CreatedAt: now,
	}
	s.SetLastAccessedAt(now)
	return s
}

// Touch marks the session as accessed now
func (s *Session) Touch() {
	s.SetLastAccessedAt(time.Now())
}

// SetLastAccessedAt overrides the last access time
func (s *Session) SetLastAccessedAt(t time.Time) {
	s.lastAccessed.Store(t.UnixNano())
}

// LastAccessedAt returns when the session was last used
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.lastAccessed.Load())
}
