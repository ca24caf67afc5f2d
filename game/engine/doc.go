// Package engine provides the core game logic for Robots vs Dinosaurs.
//
// The engine package implements:
//   - A fixed-size square grid of integer cells
//   - The registry of dinosaurs (positions) and robots (id, position, facing)
//   - Random and explicit entity placement with capacity checks
//   - The robot move/turn/attack state machine
//   - Scenario validation
//
// Cell Values:
//
// A cell holds 0 when empty, a positive value for a dinosaur's remaining life
// and a negative value for a robot's attack power. An attack adds the robot's
// power to each orthogonally adjacent dinosaur cell; the dinosaur is removed
// once its cell drops to zero or below.
//
// Usage:
//
//	game, err := engine.NewGame(10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	robot, _ := game.PlaceRobot(&engine.Coordinate{Row: 0, Column: 0}, engine.East)
//	game.PlaceDinosaur(&engine.Coordinate{Row: 0, Column: 2})
//	game.Materialize()
//
//	game.MoveForward(robot.ID)
//	outcome, _ := game.Attack(robot.ID)
//	fmt.Println(len(outcome.Defeated), game.AllDinosaursDefeated())
//
// Or, from a scenario:
//
//	game, err := engine.NewGameFromScenario(&engine.Scenario{
//		GridDim:       10,
//		RobotCount:    2,
//		DinosaurCount: 8,
//	})
//
// Concurrency:
//
// A Game is not safe for concurrent use. Every command reads and mutates the
// grid and the registry together, so callers must apply one command at a time
// per game. Distinct games share nothing.
//
// Errors:
//
// Failures are returned as *Error values that unwrap to sentinels such as
// ErrOutOfBounds or ErrPositionOccupied; use errors.Is to match them. A failed
// command never mutates the game.
package engine
