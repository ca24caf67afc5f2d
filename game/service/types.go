package service

import (
	"time"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

// CreateGameRequest describes a new game. A named scenario is used as the
// base; the remaining fields override it when set. A nil GridDim means the
// field was omitted; any explicit value, 0 included, is validated.
type CreateGameRequest struct {
	Scenario      string                  `json:"scenario,omitempty"`
	GridDim       *int                    `json:"grid_dim,omitempty"`
	RobotCount    int                     `json:"robot_count,omitempty"`
	DinosaurCount int                     `json:"dinosaur_count,omitempty"`
	Robots        []engine.RobotPlacement `json:"robots,omitempty"`
	Dinosaurs     []engine.Coordinate     `json:"dinosaurs,omitempty"`
	Seed          *uint64                 `json:"seed,omitempty"`
}

// hasEntities reports whether the request spells out its own population
func (r CreateGameRequest) hasEntities() bool {
	return r.RobotCount != 0 || r.DinosaurCount != 0 || len(r.Robots) > 0 || len(r.Dinosaurs) > 0
}

// GameSnapshot is the public view of a game
type GameSnapshot struct {
	GameID               string              `json:"game_id"`
	Scenario             string              `json:"scenario"`
	Dim                  int                 `json:"dim"`
	Grid                 [][]int             `json:"grid"`
	Dinosaurs            []engine.Coordinate `json:"dinosaurs"`
	DinosaurCount        int                 `json:"dinosaur_count"`
	Robots               []engine.Robot      `json:"robots"`
	RobotCount           int                 `json:"robot_count"`
	Moves                int                 `json:"moves"`
	AllDinosaursDefeated bool                `json:"all_dinosaurs_defeated"`
	CreatedAt            time.Time           `json:"created_at"`
	LastAccessedAt       time.Time           `json:"last_accessed_at"`
}

// State rebuilds the engine projection carried by the snapshot
func (g *GameSnapshot) State() *engine.State {
	return &engine.State{
		Dim:                  g.Dim,
		Grid:                 g.Grid,
		Dinosaurs:            g.Dinosaurs,
		DinosaurCount:        g.DinosaurCount,
		Robots:               g.Robots,
		RobotCount:           g.RobotCount,
		Moves:                g.Moves,
		AllDinosaursDefeated: g.AllDinosaursDefeated,
	}
}

// CommandResult contains the result of a robot command
type CommandResult struct {
	Success bool            `json:"success"`
	Outcome *engine.Outcome `json:"outcome"`
	Game    *GameSnapshot   `json:"game"`
	Message string          `json:"message"`
	Events  []GameEvent     `json:"events,omitempty"`
}

// DinosaurResult contains the result of adding a dinosaur to a running game
type DinosaurResult struct {
	Coordinate engine.Coordinate `json:"coordinate"`
	Game       *GameSnapshot     `json:"game"`
}

// GameEvent represents something that happened during play
type GameEvent struct {
	Type      string             `json:"type"` // "move", "turn", "attack", "dinosaur_defeated", "dinosaur_added", "victory"
	Message   string             `json:"message"`
	Timestamp time.Time          `json:"timestamp"`
	Position  *engine.Coordinate `json:"position,omitempty"`
}

// ListOptions controls game listing
type ListOptions struct {
	SortBy string `json:"sort_by"` // "created" or "accessed"
	Order  string `json:"order"`   // "asc" or "desc"
	Limit  int    `json:"limit"`
}

// HistoryOptions configures command history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated command history
type HistoryResponse struct {
	Commands      []engine.CommandRecord `json:"commands"`
	TotalCommands int                    `json:"total_commands"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
	TotalPages    int                    `json:"total_pages"`
	HasNext       bool                   `json:"has_next"`
	HasPrevious   bool                   `json:"has_previous"`
}

// ScenarioInfo provides information about a scenario preset
type ScenarioInfo struct {
	Filename      string `json:"filename"`
	ScenarioID    string `json:"scenario_id"` // The identifier to use for game creation
	Name          string `json:"name"`
	Description   string `json:"description"`
	GridDim       int    `json:"grid_dim"`
	RobotCount    int    `json:"robot_count"`
	DinosaurCount int    `json:"dinosaur_count"`
}
