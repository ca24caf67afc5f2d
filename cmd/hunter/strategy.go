package main

import (
	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

// Hunter picks commands that walk robots to the nearest dinosaur and attack.
// It keeps no state between calls; every decision is made from the snapshot.
type Hunter struct{}

// Step is one planned command
type Step struct {
	RobotID string
	Command engine.Command
}

// Next returns the first useful command for any robot, in robot order.
// ok is false when the board is clear or every robot is stuck.
func (h Hunter) Next(state *engine.State) (Step, bool) {
	if state.AllDinosaursDefeated {
		return Step{}, false
	}
	for _, r := range state.Robots {
		if cmd, ok := h.NextCommand(state, r); ok {
			return Step{RobotID: r.ID, Command: cmd}, true
		}
	}
	return Step{}, false
}

// NextCommand plans a single command for one robot
func (h Hunter) NextCommand(state *engine.State, r engine.Robot) (engine.Command, bool) {
	if len(engine.AdjacentDinosaurs(state, r.Coordinate)) > 0 {
		return engine.CommandAttack, true
	}

	next, ok := firstStep(state, r.Coordinate)
	if !ok {
		return "", false
	}
	want := directionTo(r.Coordinate, next)

	switch want {
	case r.Direction:
		return engine.CommandForward, true
	case r.Direction.Right().Right():
		// Backing up keeps the facing; no need to turn around
		return engine.CommandBackward, true
	case r.Direction.Right():
		return engine.CommandTurnRight, true
	default:
		return engine.CommandTurnLeft, true
	}
}

// firstStep runs a breadth-first search over empty cells from start to the
// closest cell next to a dinosaur and returns the first cell on that path.
func firstStep(state *engine.State, start engine.Coordinate) (engine.Coordinate, bool) {
	free := func(c engine.Coordinate) bool {
		return c.Row >= 0 && c.Column >= 0 && c.Row < state.Dim && c.Column < state.Dim &&
			state.Grid[c.Row][c.Column] == 0
	}

	parent := map[engine.Coordinate]engine.Coordinate{start: start}
	queue := []engine.Coordinate{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur != start && len(engine.AdjacentDinosaurs(state, cur)) > 0 {
			// Walk back to the cell right after start
			for parent[cur] != start {
				cur = parent[cur]
			}
			return cur, true
		}

		for _, d := range engine.Directions {
			n := cur.Shift(d.Step())
			if _, seen := parent[n]; seen || !free(n) {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	return engine.Coordinate{}, false
}

// directionTo returns the direction of the orthogonal neighbour to from from
func directionTo(from, to engine.Coordinate) engine.Direction {
	for _, d := range engine.Directions {
		if from.Shift(d.Step()) == to {
			return d
		}
	}
	return engine.DefaultDirection
}
