package engine

import (
	"github.com/sirupsen/logrus"
)

// MoveForward moves the robot one cell in the direction it faces
func (g *Game) MoveForward(robotID string) (*Outcome, error) {
	return g.move("move forward", CommandForward, robotID, 1)
}

// MoveBackward moves the robot one cell opposite to the direction it faces
func (g *Game) MoveBackward(robotID string) (*Outcome, error) {
	return g.move("move backward", CommandBackward, robotID, -1)
}

// TurnRight rotates the robot clockwise
func (g *Game) TurnRight(robotID string) (*Outcome, error) {
	return g.turn("turn right", CommandTurnRight, robotID, Direction.Right)
}

// TurnLeft rotates the robot counter-clockwise
func (g *Game) TurnLeft(robotID string) (*Outcome, error) {
	return g.turn("turn left", CommandTurnLeft, robotID, Direction.Left)
}

// Attack hits every dinosaur orthogonally adjacent to the robot. A dinosaur is
// removed once its cell value drops to zero or below.
func (g *Game) Attack(robotID string) (*Outcome, error) {
	const op = "attack"

	robot, err := g.ready(op, robotID)
	if err != nil {
		return nil, err
	}

	power := g.grid.Get(robot.Coordinate)
	outcome := &Outcome{
		Command:       CommandAttack,
		RobotID:       robotID,
		From:          robot.Coordinate,
		To:            robot.Coordinate,
		FromDirection: robot.Direction,
		ToDirection:   robot.Direction,
	}

	for _, target := range robot.Coordinate.Neighbors() {
		if !g.grid.InBounds(target) {
			continue
		}
		value := g.grid.Get(target)
		if value <= 0 {
			// empty or another robot
			continue
		}

		value += power
		if value <= 0 {
			g.grid.Set(target, 0)
			g.removeDinosaur(target)
			outcome.Defeated = append(outcome.Defeated, target)
		} else {
			g.grid.Set(target, value)
			outcome.Damaged = append(outcome.Damaged, target)
		}
	}

	g.record(outcome)

	g.log.WithFields(logrus.Fields{
		"robot_id":  robotID,
		"position":  robot.Coordinate.String(),
		"defeated":  len(outcome.Defeated),
		"damaged":   len(outcome.Damaged),
		"remaining": len(g.dinosaurs),
		"move":      g.moves,
	}).Debug("robot attacked")

	return outcome, nil
}

func (g *Game) move(op string, cmd Command, robotID string, sign int) (*Outcome, error) {
	robot, err := g.ready(op, robotID)
	if err != nil {
		return nil, err
	}

	axis, step := robot.Direction.Step()
	from := robot.Coordinate
	to := from.Shift(axis, sign*step)

	if !g.grid.InBounds(to) {
		return nil, &Error{Kind: ErrOutOfBounds, Op: op, RobotID: robotID, Coordinate: at(to)}
	}
	if !g.grid.IsEmpty(to) {
		return nil, &Error{Kind: ErrPositionOccupied, Op: op, RobotID: robotID, Coordinate: at(to)}
	}

	g.grid.Set(from, 0)
	g.grid.Set(to, RobotPower)
	robot.Coordinate = to

	outcome := g.record(&Outcome{
		Command:       cmd,
		RobotID:       robotID,
		From:          from,
		To:            to,
		FromDirection: robot.Direction,
		ToDirection:   robot.Direction,
	})

	g.log.WithFields(logrus.Fields{
		"robot_id":  robotID,
		"from":      from.String(),
		"to":        to.String(),
		"direction": string(robot.Direction),
		"move":      g.moves,
	}).Debugf("robot %s", op)

	return outcome, nil
}

func (g *Game) turn(op string, cmd Command, robotID string, rotate func(Direction) Direction) (*Outcome, error) {
	robot, err := g.ready(op, robotID)
	if err != nil {
		return nil, err
	}

	from := robot.Direction
	robot.Direction = rotate(from)

	outcome := g.record(&Outcome{
		Command:       cmd,
		RobotID:       robotID,
		From:          robot.Coordinate,
		To:            robot.Coordinate,
		FromDirection: from,
		ToDirection:   robot.Direction,
	})

	g.log.WithFields(logrus.Fields{
		"robot_id": robotID,
		"from":     string(from),
		"to":       string(robot.Direction),
		"move":     g.moves,
	}).Debugf("robot %s", op)

	return outcome, nil
}
