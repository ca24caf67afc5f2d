package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	defaultScenarioName = "default"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	log      *logrus.Entry
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      logger.WithComponent("service"),
	}
}

// CreateGame builds a scenario from the request and starts a game from it
func (s *gameServiceImpl) CreateGame(ctx context.Context, req CreateGameRequest) (*GameSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scenario, err := s.buildScenario(req)
	if err != nil {
		return nil, err
	}

	var opts []engine.Option
	if req.Seed != nil {
		opts = append(opts, engine.WithSeed(*req.Seed))
	}

	// Let the session manager generate the id
	sess, err := s.sessions.Create("", scenario, opts...)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"game_id":   sess.ID,
		"scenario":  sess.Scenario,
		"dim":       sess.Game.Dim(),
		"robots":    sess.Game.RobotCount(),
		"dinosaurs": sess.Game.DinosaurCount(),
	}).Info("game created")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(sess), nil
}

// buildScenario resolves the base scenario and applies request overrides
func (s *gameServiceImpl) buildScenario(req CreateGameRequest) (*engine.Scenario, error) {
	var base *engine.Scenario
	switch {
	case req.Scenario != "":
		preset, err := s.configs.LoadScenario(req.Scenario)
		if err != nil {
			return nil, s.scenarioError(req.Scenario, err)
		}
		base = cloneScenario(preset)
		if base.Name == "" {
			base.Name = req.Scenario
		}
	case req.GridDim == nil:
		base = cloneScenario(s.configs.GetDefault())
	default:
		base = &engine.Scenario{Name: "custom"}
	}

	if req.GridDim != nil {
		base.GridDim = *req.GridDim
	}
	if req.hasEntities() {
		base.RobotCount = req.RobotCount
		base.DinosaurCount = req.DinosaurCount
		base.Robots = append([]engine.RobotPlacement(nil), req.Robots...)
		base.Dinosaurs = append([]engine.Coordinate(nil), req.Dinosaurs...)
	}

	if err := engine.NormalizeScenario(base); err != nil {
		return nil, err
	}
	return base, nil
}

// scenarioError adds the available preset names to a lookup failure
func (s *gameServiceImpl) scenarioError(name string, err error) error {
	if !errors.Is(err, ErrScenarioNotFound) {
		return fmt.Errorf("failed to load scenario %s: %w", name, err)
	}
	available, listErr := s.configs.ListScenarios()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, info := range available {
			ids = append(ids, info.ScenarioID)
		}
		return fmt.Errorf("scenario '%s' not found, available scenarios: %v: %w", name, ids, err)
	}
	return fmt.Errorf("scenario '%s' not found, use /api/scenarios to list presets: %w", name, err)
}

// GetGame returns the current snapshot of a game
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameSnapshot, error) {
	sess, err := s.session(ctx, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(sess), nil
}

// ListGames returns snapshots of every live game
func (s *gameServiceImpl) ListGames(ctx context.Context, opts ListOptions) ([]*GameSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessions := s.sessions.List()
	result := make([]*GameSnapshot, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		result = append(result, snapshot(sess))
		sess.mu.Unlock()
	}

	key := func(g *GameSnapshot) time.Time { return g.CreatedAt }
	if opts.SortBy == "accessed" {
		key = func(g *GameSnapshot) time.Time { return g.LastAccessedAt }
	}
	desc := strings.EqualFold(opts.Order, "desc")
	sort.SliceStable(result, func(i, j int) bool {
		a, b := key(result[i]), key(result[j])
		if a.Equal(b) {
			return result[i].GameID < result[j].GameID
		}
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// DeleteGame removes a game
func (s *gameServiceImpl) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sessions.Delete(gameID); err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}
	s.log.WithField("game_id", gameID).Info("game deleted")
	return nil
}

// DeleteAllGames removes every game and returns how many were dropped
func (s *gameServiceImpl) DeleteAllGames(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := s.sessions.DeleteAll()
	s.log.WithField("count", n).Info("all games deleted")
	return n, nil
}

// ApplyCommand parses and executes a single robot command
func (s *gameServiceImpl) ApplyCommand(ctx context.Context, gameID, robotRef, command string) (*CommandResult, error) {
	cmd, err := engine.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(ctx, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	robot, err := resolveRobot(sess.Game, robotRef)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	outcome, err := sess.Game.Apply(robot.ID, cmd)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	events := commandEvents(sess.Game, outcome)
	return &CommandResult{
		Success: true,
		Outcome: outcome,
		Game:    snapshot(sess),
		Message: events[len(events)-1].Message,
		Events:  events,
	}, nil
}

// resolveRobot finds a robot by id, or by index modulo the robot count when
// the reference is an integer. An empty reference selects the first robot.
func resolveRobot(game *engine.Game, ref string) (engine.Robot, error) {
	ref = strings.TrimSpace(ref)
	if robot, ok := game.Robot(ref); ok {
		return robot, nil
	}

	index := 0
	if ref != "" {
		n, err := strconv.Atoi(ref)
		if err != nil {
			return engine.Robot{}, &engine.Error{Kind: engine.ErrRobotNotFound, Op: "resolve robot", RobotID: ref}
		}
		index = n
	}

	robot, ok := game.RobotAt(index)
	if !ok {
		return engine.Robot{}, &engine.Error{Kind: engine.ErrRobotNotFound, Op: "resolve robot", Detail: "game has no robots"}
	}
	return robot, nil
}

// AddDinosaur places a dinosaur on a running game
func (s *gameServiceImpl) AddDinosaur(ctx context.Context, gameID string, at *engine.Coordinate) (*DinosaurResult, error) {
	sess, err := s.session(ctx, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	c, err := sess.Game.PlaceDinosaur(at)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}

	return &DinosaurResult{
		Coordinate: c,
		Game:       snapshot(sess),
	}, nil
}

// GetHistory returns paginated command history
func (s *gameServiceImpl) GetHistory(ctx context.Context, gameID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(ctx, gameID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	history := sess.Game.History()
	sess.mu.Unlock()

	return paginate(history, opts), nil
}

func paginate(history []engine.CommandRecord, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > engine.MaxHistoryPageLimit {
		opts.Limit = engine.MaxHistoryPageLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	commands := []engine.CommandRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				commands = append(commands, history[i])
			}
		} else {
			commands = append(commands, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Commands:      commands,
		TotalCommands: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}
}

// ListScenarios returns available scenario presets
func (s *gameServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.configs.ListScenarios()
}

// LoadScenario loads a specific scenario preset
func (s *gameServiceImpl) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	return s.configs.LoadScenario(name)
}

// SaveScenario saves a scenario preset to disk
func (s *gameServiceImpl) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	if err := engine.NormalizeScenario(scenario); err != nil {
		return err
	}
	return s.configs.SaveScenario(name, scenario)
}

// session looks up a game and marks it accessed
func (s *gameServiceImpl) session(ctx context.Context, gameID string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}
	s.sessions.UpdateLastAccessed(gameID)
	return sess, nil
}

// snapshot projects a session; the caller holds the session lock
func snapshot(sess *Session) *GameSnapshot {
	state := sess.Game.State()
	return &GameSnapshot{
		GameID:               sess.ID,
		Scenario:             sess.Scenario,
		Dim:                  state.Dim,
		Grid:                 state.Grid,
		Dinosaurs:            state.Dinosaurs,
		DinosaurCount:        state.DinosaurCount,
		Robots:               state.Robots,
		RobotCount:           state.RobotCount,
		Moves:                state.Moves,
		AllDinosaursDefeated: state.AllDinosaursDefeated,
		CreatedAt:            sess.CreatedAt,
		LastAccessedAt:       sess.LastAccessedAt(),
	}
}

// commandEvents describes an outcome as a list of events. The last event
// carries the headline message.
func commandEvents(game *engine.Game, o *engine.Outcome) []GameEvent {
	now := time.Now()
	var events []GameEvent

	switch o.Command {
	case engine.CommandForward, engine.CommandBackward:
		to := o.To
		events = append(events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Robot %s moved %s from %s to %s", o.RobotID, o.Command, o.From, o.To),
			Timestamp: now,
			Position:  &to,
		})
	case engine.CommandTurnLeft, engine.CommandTurnRight:
		events = append(events, GameEvent{
			Type:      "turn",
			Message:   fmt.Sprintf("Robot %s turned from %s to %s", o.RobotID, o.FromDirection, o.ToDirection),
			Timestamp: now,
		})
	case engine.CommandAttack:
		for _, c := range o.Defeated {
			c := c
			events = append(events, GameEvent{
				Type:      "dinosaur_defeated",
				Message:   fmt.Sprintf("Dinosaur at %s defeated", c),
				Timestamp: now,
				Position:  &c,
			})
		}
		pos := o.From
		events = append(events, GameEvent{
			Type:      "attack",
			Message:   fmt.Sprintf("Robot %s attacked from %s: %d defeated, %d remaining", o.RobotID, o.From, len(o.Defeated), game.DinosaurCount()),
			Timestamp: now,
			Position:  &pos,
		})
	}

	if len(o.Defeated) > 0 && game.AllDinosaursDefeated() {
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   fmt.Sprintf("All dinosaurs defeated in %d moves!", game.Moves()),
			Timestamp: now,
		})
	}

	return events
}

func cloneScenario(s *engine.Scenario) *engine.Scenario {
	if s == nil {
		return &engine.Scenario{Name: defaultScenarioName, GridDim: 10}
	}
	c := *s
	c.Robots = append([]engine.RobotPlacement(nil), s.Robots...)
	c.Dinosaurs = append([]engine.Coordinate(nil), s.Dinosaurs...)
	return &c
}
