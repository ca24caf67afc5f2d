package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/exp/rand"

	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
)

// Game owns one grid and the registry of every dinosaur and robot placed on it.
// A Game is not safe for concurrent use; callers serialize access per game.
type Game struct {
	grid      *Grid
	dinosaurs []Coordinate
	robots    *orderedmap.OrderedMap[string, *Robot]

	// pending tracks occupied coordinates until the board is materialized
	pending      map[Coordinate]struct{}
	materialized bool

	moves   int
	history []CommandRecord

	rng   *rand.Rand
	newID func() string
	log   *logrus.Entry
}

// Option configures a Game
type Option func(*Game)

// WithRand sets the random source used for automatic placement
func WithRand(r *rand.Rand) Option {
	return func(g *Game) {
		g.rng = r
	}
}

// WithSeed seeds the placement random source
func WithSeed(seed uint64) Option {
	return func(g *Game) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithIDGenerator overrides how robot identifiers are generated
func WithIDGenerator(fn func() string) Option {
	return func(g *Game) {
		g.newID = fn
	}
}

// WithLogger sets the log entry used for engine events
func WithLogger(entry *logrus.Entry) Option {
	return func(g *Game) {
		g.log = entry
	}
}

// NewGame creates an empty game on a dim x dim grid
func NewGame(dim int, opts ...Option) (*Game, error) {
	grid, err := NewGrid(dim)
	if err != nil {
		return nil, err
	}

	g := &Game{
		grid:    grid,
		robots:  orderedmap.New[string, *Robot](),
		pending: make(map[Coordinate]struct{}),
		history: []CommandRecord{},
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if g.newID == nil {
		g.newID = uuid.NewString
	}
	if g.log == nil {
		g.log = logger.Log.WithField("component", "engine")
	}

	return g, nil
}

// NewGameFromScenario validates the scenario, places every entity it describes
// and materializes the board.
func NewGameFromScenario(s *Scenario, opts ...Option) (*Game, error) {
	if err := ValidateScenario(s); err != nil {
		return nil, err
	}

	g, err := NewGame(s.GridDim, opts...)
	if err != nil {
		return nil, err
	}

	for _, d := range s.Dinosaurs {
		if _, err := g.PlaceDinosaur(at(d)); err != nil {
			return nil, err
		}
	}
	for _, r := range s.Robots {
		if _, err := g.PlaceRobot(at(r.Coordinate), r.Direction); err != nil {
			return nil, err
		}
	}

	robotCount, dinosaurCount := s.RandomCounts()
	for i := 0; i < dinosaurCount; i++ {
		if _, err := g.PlaceDinosaur(nil); err != nil {
			return nil, err
		}
	}
	for i := 0; i < robotCount; i++ {
		if _, err := g.PlaceRobot(nil, DefaultDirection); err != nil {
			return nil, err
		}
	}

	if err := g.Materialize(); err != nil {
		return nil, err
	}
	return g, nil
}

// Grid returns the game board
func (g *Game) Grid() *Grid {
	return g.grid
}

// Dim returns the grid dimension
func (g *Game) Dim() int {
	return g.grid.dim
}

// Moves returns the number of successful move, turn and attack commands
func (g *Game) Moves() int {
	return g.moves
}

// Materialized reports whether the board cells have been written
func (g *Game) Materialized() bool {
	return g.materialized
}

// AllDinosaursDefeated reports whether no dinosaur remains on the board
func (g *Game) AllDinosaursDefeated() bool {
	return len(g.dinosaurs) == 0
}

// History returns a copy of the successful commands applied so far
func (g *Game) History() []CommandRecord {
	return append([]CommandRecord(nil), g.history...)
}

// Apply executes a single command for the given robot
func (g *Game) Apply(robotID string, cmd Command) (*Outcome, error) {
	switch cmd {
	case CommandForward:
		return g.MoveForward(robotID)
	case CommandBackward:
		return g.MoveBackward(robotID)
	case CommandTurnRight:
		return g.TurnRight(robotID)
	case CommandTurnLeft:
		return g.TurnLeft(robotID)
	case CommandAttack:
		return g.Attack(robotID)
	}
	return nil, &Error{Kind: ErrUnsupportedCommand, Op: "apply", RobotID: robotID, Detail: string(cmd)}
}

// State returns a snapshot of the game that shares no memory with it
func (g *Game) State() *State {
	robots := g.Robots()
	return &State{
		Dim:                  g.grid.dim,
		Grid:                 g.grid.Cells(),
		Dinosaurs:            g.Dinosaurs(),
		DinosaurCount:        len(g.dinosaurs),
		Robots:               robots,
		RobotCount:           len(robots),
		Moves:                g.moves,
		AllDinosaursDefeated: g.AllDinosaursDefeated(),
	}
}

// record bumps the move counter and appends the outcome to the history
func (g *Game) record(o *Outcome) *Outcome {
	g.moves++
	o.MoveNumber = g.moves
	g.history = append(g.history, newCommandRecord(o))
	return o
}

// ready fails if commands are not yet allowed on this game
func (g *Game) ready(op, robotID string) (*Robot, error) {
	if !g.materialized {
		return nil, &Error{Kind: ErrNotMaterialized, Op: op, RobotID: robotID}
	}
	robot, ok := g.robots.Get(robotID)
	if !ok {
		return nil, &Error{Kind: ErrRobotNotFound, Op: op, RobotID: robotID}
	}
	return robot, nil
}
