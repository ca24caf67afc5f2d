package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DinosaurLife is the life a dinosaur starts with
	DinosaurLife = 1
	// RobotPower is the attack power of a robot, stored negative in the grid
	RobotPower = -1

	// Validation constants
	MinGridDim          = 3
	MaxGridDim          = 100
	DefaultDirection    = East
	maxRandomDraws      = 32
	MaxHistoryPageLimit = 100
)

// Coordinate is a (row, column) pair on the grid
type Coordinate struct {
	Row    int `json:"row" yaml:"row"`
	Column int `json:"column" yaml:"column"`
}

// At is a convenience constructor for Coordinate
func At(row, column int) Coordinate {
	return Coordinate{Row: row, Column: column}
}

// String returns the coordinate in (row,column) form
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Column)
}

// Shift returns the coordinate moved by delta along the given axis
func (c Coordinate) Shift(axis Axis, delta int) Coordinate {
	if axis == RowAxis {
		return Coordinate{Row: c.Row + delta, Column: c.Column}
	}
	return Coordinate{Row: c.Row, Column: c.Column + delta}
}

// Neighbors returns the four orthogonally adjacent coordinates, without bounds checks
func (c Coordinate) Neighbors() [4]Coordinate {
	return [4]Coordinate{
		{Row: c.Row + 1, Column: c.Column},
		{Row: c.Row - 1, Column: c.Column},
		{Row: c.Row, Column: c.Column + 1},
		{Row: c.Row, Column: c.Column - 1},
	}
}

// UnmarshalJSON accepts both {"row": r, "column": c} and the tuple form [r, c]
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("coordinate must have exactly 2 values, got %d", len(pair))
		}
		c.Row, c.Column = pair[0], pair[1]
		return nil
	}

	type plain Coordinate
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid coordinate %s: %w", string(data), err)
	}
	*c = Coordinate(p)
	return nil
}

// UnmarshalYAML accepts both a mapping with row/column keys and a [row, column] sequence
func (c *Coordinate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var pair []int
		if err := value.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: coordinate must have exactly 2 values, got %d", value.Line, len(pair))
		}
		c.Row, c.Column = pair[0], pair[1]
		return nil
	}

	type plain Coordinate
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Coordinate(p)
	return nil
}

// Axis selects which coordinate component a direction moves along
type Axis int

const (
	RowAxis Axis = iota
	ColumnAxis
)

// Direction is the facing of a robot
type Direction string

const (
	East  Direction = "E"
	South Direction = "S"
	West  Direction = "W"
	North Direction = "N"
)

// Directions lists every direction in clockwise order
var Directions = []Direction{East, South, West, North}

// ParseDirection parses E/S/W/N or the full English name, case-insensitively.
// An empty string yields the default direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDirection, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	case "n", "north":
		return North, nil
	}
	return "", &Error{Kind: ErrInvalidDirection, Op: "parse direction", Detail: s}
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d.index() >= 0
}

func (d Direction) index() int {
	for i, dir := range Directions {
		if dir == d {
			return i
		}
	}
	return -1
}

// Right returns the next direction clockwise
func (d Direction) Right() Direction {
	return Directions[(d.index()+1)%len(Directions)]
}

// Left returns the next direction counter-clockwise
func (d Direction) Left() Direction {
	n := len(Directions)
	return Directions[(d.index()-1+n)%n]
}

// Step returns the axis and signed unit step for moving forward in direction d
func (d Direction) Step() (Axis, int) {
	switch d {
	case East:
		return ColumnAxis, 1
	case West:
		return ColumnAxis, -1
	case South:
		return RowAxis, 1
	default:
		return RowAxis, -1
	}
}

// Robot is a registry record: identity, position and facing
type Robot struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	Direction  Direction  `json:"direction"`
}

// RobotPlacement is an explicit robot position used by scenarios
type RobotPlacement struct {
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
	Direction  Direction  `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// Scenario describes how a game is populated: random counts, explicit lists, or both
type Scenario struct {
	Name          string           `json:"name" yaml:"name"`
	Description   string           `json:"description,omitempty" yaml:"description,omitempty"`
	GridDim       int              `json:"grid_dim" yaml:"grid_dim"`
	RobotCount    int              `json:"robot_count,omitempty" yaml:"robot_count,omitempty"`
	DinosaurCount int              `json:"dinosaur_count,omitempty" yaml:"dinosaur_count,omitempty"`
	Robots        []RobotPlacement `json:"robots,omitempty" yaml:"robots,omitempty"`
	Dinosaurs     []Coordinate     `json:"dinosaurs,omitempty" yaml:"dinosaurs,omitempty"`
}

// State is the read-only projection of a game
type State struct {
	Dim                  int          `json:"dim"`
	Grid                 [][]int      `json:"grid"`
	Dinosaurs            []Coordinate `json:"dinosaurs"`
	DinosaurCount        int          `json:"dinosaur_count"`
	Robots               []Robot      `json:"robots"`
	RobotCount           int          `json:"robot_count"`
	Moves                int          `json:"moves"`
	AllDinosaursDefeated bool         `json:"all_dinosaurs_defeated"`
}

// Outcome describes the effect of one successful command
type Outcome struct {
	Command       Command      `json:"command"`
	RobotID       string       `json:"robot_id"`
	From          Coordinate   `json:"from"`
	To            Coordinate   `json:"to"`
	FromDirection Direction    `json:"from_direction"`
	ToDirection   Direction    `json:"to_direction"`
	Defeated      []Coordinate `json:"defeated,omitempty"`
	Damaged       []Coordinate `json:"damaged,omitempty"`
	MoveNumber    int          `json:"move_number"`
}

// CommandRecord is a single entry in a game's command history
type CommandRecord struct {
	MoveNumber int          `json:"move_number"`
	Command    Command      `json:"command"`
	RobotID    string       `json:"robot_id"`
	From       Coordinate   `json:"from"`
	To         Coordinate   `json:"to"`
	Direction  Direction    `json:"direction"`
	Defeated   []Coordinate `json:"defeated,omitempty"`
	Timestamp  int64        `json:"timestamp"`
}

func newCommandRecord(o *Outcome) CommandRecord {
	return CommandRecord{
		MoveNumber: o.MoveNumber,
		Command:    o.Command,
		RobotID:    o.RobotID,
		From:       o.From,
		To:         o.To,
		Direction:  o.ToDirection,
		Defeated:   o.Defeated,
		Timestamp:  time.Now().Unix(),
	}
}
