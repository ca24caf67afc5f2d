package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// PlaceDinosaur records a dinosaur at the given coordinate, or at a random free
// coordinate when at is nil. Explicit coordinates that are occupied are an
// error; only the random path retries.
func (g *Game) PlaceDinosaur(at *Coordinate) (Coordinate, error) {
	const op = "place dinosaur"

	if err := g.checkCapacity(op); err != nil {
		return Coordinate{}, err
	}

	c, err := g.choose(op, at)
	if err != nil {
		return Coordinate{}, err
	}

	g.dinosaurs = append(g.dinosaurs, c)
	g.occupy(c, DinosaurLife)

	g.log.WithFields(logrus.Fields{
		"position": c.String(),
		"random":   at == nil,
	}).Debug("dinosaur placed")

	return c, nil
}

// PlaceRobot records a robot facing dir at the given coordinate, or at a random
// free coordinate when at is nil. An empty direction defaults to East.
func (g *Game) PlaceRobot(at *Coordinate, dir Direction) (Robot, error) {
	const op = "place robot"

	if err := g.checkCapacity(op); err != nil {
		return Robot{}, err
	}

	if dir == "" {
		dir = DefaultDirection
	}
	if !dir.Valid() {
		return Robot{}, &Error{Kind: ErrInvalidDirection, Op: op, Detail: string(dir)}
	}

	c, err := g.choose(op, at)
	if err != nil {
		return Robot{}, err
	}

	robot := &Robot{
		ID:         g.uniqueRobotID(),
		Coordinate: c,
		Direction:  dir,
	}
	g.robots.Set(robot.ID, robot)
	g.occupy(c, RobotPower)

	g.log.WithFields(logrus.Fields{
		"robot_id":  robot.ID,
		"position":  c.String(),
		"direction": string(dir),
		"random":    at == nil,
	}).Debug("robot placed")

	return *robot, nil
}

// Materialize writes every dinosaur's life and every robot's power into the
// grid. It must be called once, after the initial placements and before any
// command.
func (g *Game) Materialize() error {
	if g.materialized {
		return &Error{Kind: ErrAlreadyMaterialized, Op: "materialize"}
	}

	for _, d := range g.dinosaurs {
		g.grid.Set(d, DinosaurLife)
	}
	for pair := g.robots.Oldest(); pair != nil; pair = pair.Next() {
		g.grid.Set(pair.Value.Coordinate, RobotPower)
	}

	g.materialized = true
	g.pending = nil

	g.log.WithFields(logrus.Fields{
		"dim":       g.grid.dim,
		"dinosaurs": len(g.dinosaurs),
		"robots":    g.robots.Len(),
	}).Debug("board materialized")

	return nil
}

func (g *Game) checkCapacity(op string) error {
	total := len(g.dinosaurs) + g.robots.Len()
	if total >= g.grid.dim*g.grid.dim {
		return &Error{
			Kind:   ErrGridFull,
			Op:     op,
			Detail: fmt.Sprintf("%d entities already on a %dx%d grid", total, g.grid.dim, g.grid.dim),
		}
	}
	return nil
}

// choose validates an explicit coordinate or draws a random free one
func (g *Game) choose(op string, want *Coordinate) (Coordinate, error) {
	if want != nil {
		c := *want
		if !g.grid.InBounds(c) {
			return Coordinate{}, &Error{Kind: ErrOutOfBounds, Op: op, Coordinate: at(c)}
		}
		if g.taken(c) {
			return Coordinate{}, &Error{Kind: ErrPositionOccupied, Op: op, Coordinate: at(c)}
		}
		return c, nil
	}

	dim := g.grid.dim
	for i := 0; i < maxRandomDraws; i++ {
		c := Coordinate{Row: g.rng.Intn(dim), Column: g.rng.Intn(dim)}
		if !g.taken(c) {
			return c, nil
		}
	}

	// Dense board: pick uniformly among what is left
	var free []Coordinate
	for r := 0; r < dim; r++ {
		for col := 0; col < dim; col++ {
			c := Coordinate{Row: r, Column: col}
			if !g.taken(c) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return Coordinate{}, &Error{Kind: ErrGridFull, Op: op, Detail: "no free cell left"}
	}
	return free[g.rng.Intn(len(free))], nil
}

func (g *Game) occupy(c Coordinate, value int) {
	if g.materialized {
		g.grid.Set(c, value)
		return
	}
	g.pending[c] = struct{}{}
}

func (g *Game) uniqueRobotID() string {
	id := g.newID()
	for i := 0; i < 8; i++ {
		if _, exists := g.robots.Get(id); !exists {
			return id
		}
		id = g.newID()
	}
	// Generator keeps colliding; suffix until free
	for n := g.robots.Len(); ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, exists := g.robots.Get(candidate); !exists {
			return candidate
		}
	}
}
