package engine

import (
	"errors"
	"testing"
)

func TestMoveForward(t *testing.T) {
	tests := []struct {
		name      string
		start     Coordinate
		direction Direction
		expected  Coordinate
	}{
		{"east", At(2, 2), East, At(2, 3)},
		{"west", At(2, 2), West, At(2, 1)},
		{"south", At(2, 2), South, At(3, 2)},
		{"north", At(2, 2), North, At(1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := setupGame(t, 5, []RobotPlacement{{Coordinate: tt.start, Direction: tt.direction}}, nil)

			outcome, err := game.MoveForward("r1")
			if err != nil {
				t.Fatalf("Failed to move: %v", err)
			}
			if outcome.To != tt.expected {
				t.Errorf("Expected robot at %s, got %s", tt.expected, outcome.To)
			}
			if game.Grid().Get(tt.start) != 0 {
				t.Errorf("Expected origin %s to be cleared", tt.start)
			}
			if game.Grid().Get(tt.expected) != RobotPower {
				t.Errorf("Expected robot power at %s", tt.expected)
			}
			if game.Moves() != 1 {
				t.Errorf("Expected 1 move, got %d", game.Moves())
			}
			robot, _ := game.Robot("r1")
			if robot.Coordinate != tt.expected || robot.Direction != tt.direction {
				t.Errorf("Registry not updated: %+v", robot)
			}
			assertConsistent(t, game)
		})
	}
}

func TestMoveFromCorner(t *testing.T) {
	game := setupGame(t, 10, []RobotPlacement{{Coordinate: At(0, 0), Direction: East}}, nil)

	if _, err := game.MoveForward("r1"); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	robot, _ := game.Robot("r1")
	if robot.Coordinate != At(0, 1) {
		t.Errorf("Expected (0,1), got %s", robot.Coordinate)
	}
	if game.Grid().Get(At(0, 0)) != 0 || game.Grid().Get(At(0, 1)) != RobotPower {
		t.Error("Grid not updated after move")
	}
	if game.Moves() != 1 {
		t.Errorf("Expected 1 move, got %d", game.Moves())
	}
}

func TestMoveOutOfBounds(t *testing.T) {
	const dim = 6
	tests := []struct {
		name      string
		start     Coordinate
		direction Direction
		backward  bool
	}{
		{"forward off east edge", At(0, dim-1), East, false},
		{"forward off north edge", At(0, 3), North, false},
		{"forward off west edge", At(3, 0), West, false},
		{"forward off south edge", At(dim-1, 3), South, false},
		{"backward off west edge", At(2, 0), East, true},
		{"backward off south edge", At(dim-1, 2), North, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := setupGame(t, dim, []RobotPlacement{{Coordinate: tt.start, Direction: tt.direction}}, nil)
			before := game.State()

			var err error
			if tt.backward {
				_, err = game.MoveBackward("r1")
			} else {
				_, err = game.MoveForward("r1")
			}
			if !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("Expected ErrOutOfBounds, got %v", err)
			}

			robot, _ := game.Robot("r1")
			if robot.Coordinate != tt.start {
				t.Errorf("Robot moved to %s on failure", robot.Coordinate)
			}
			if game.Moves() != 0 {
				t.Errorf("Expected 0 moves after failure, got %d", game.Moves())
			}
			if game.Grid().Get(tt.start) != before.Grid[tt.start.Row][tt.start.Column] {
				t.Error("Grid changed on failure")
			}
		})
	}
}

func TestMoveIntoOccupiedCell(t *testing.T) {
	t.Run("dinosaur blocks", func(t *testing.T) {
		game := setupGame(t, 5,
			[]RobotPlacement{{Coordinate: At(2, 2), Direction: East}},
			[]Coordinate{At(2, 3)},
		)
		_, err := game.MoveForward("r1")
		if !errors.Is(err, ErrPositionOccupied) {
			t.Fatalf("Expected ErrPositionOccupied, got %v", err)
		}
		if game.Grid().Get(At(2, 3)) != DinosaurLife {
			t.Error("Dinosaur was overwritten")
		}
		if game.Moves() != 0 {
			t.Errorf("Expected 0 moves, got %d", game.Moves())
		}
		assertConsistent(t, game)
	})

	t.Run("robot blocks", func(t *testing.T) {
		game := setupGame(t, 5, []RobotPlacement{
			{Coordinate: At(2, 2), Direction: West},
			{Coordinate: At(2, 3), Direction: East},
		}, nil)
		if _, err := game.MoveBackward("r1"); !errors.Is(err, ErrPositionOccupied) {
			t.Fatalf("Expected ErrPositionOccupied, got %v", err)
		}
		assertConsistent(t, game)
	})
}

func TestMoveBackwardRoundTrip(t *testing.T) {
	game := setupGame(t, 5, []RobotPlacement{{Coordinate: At(2, 2), Direction: South}}, nil)

	if _, err := game.MoveForward("r1"); err != nil {
		t.Fatalf("Failed to move forward: %v", err)
	}
	outcome, err := game.MoveBackward("r1")
	if err != nil {
		t.Fatalf("Failed to move backward: %v", err)
	}

	if outcome.To != At(2, 2) {
		t.Errorf("Expected robot back at (2,2), got %s", outcome.To)
	}
	if outcome.ToDirection != South {
		t.Errorf("Backward must not change direction, got %s", outcome.ToDirection)
	}
	if game.Moves() != 2 {
		t.Errorf("Expected 2 moves, got %d", game.Moves())
	}
	assertConsistent(t, game)
}

func TestTurn(t *testing.T) {
	game := setupGame(t, 5, []RobotPlacement{{Coordinate: At(1, 1), Direction: East}}, nil)

	expectedRight := []Direction{South, West, North, East}
	for i, want := range expectedRight {
		outcome, err := game.TurnRight("r1")
		if err != nil {
			t.Fatalf("Failed to turn right: %v", err)
		}
		if outcome.ToDirection != want {
			t.Errorf("Right turn %d: expected %s, got %s", i+1, want, outcome.ToDirection)
		}
		if outcome.To != At(1, 1) {
			t.Errorf("Turning must not move the robot, got %s", outcome.To)
		}
	}

	expectedLeft := []Direction{North, West, South, East}
	for i, want := range expectedLeft {
		outcome, err := game.TurnLeft("r1")
		if err != nil {
			t.Fatalf("Failed to turn left: %v", err)
		}
		if outcome.ToDirection != want {
			t.Errorf("Left turn %d: expected %s, got %s", i+1, want, outcome.ToDirection)
		}
	}

	if game.Moves() != 8 {
		t.Errorf("Expected 8 moves, got %d", game.Moves())
	}
	if game.Grid().Get(At(1, 1)) != RobotPower {
		t.Error("Turning changed the grid")
	}
}

func TestAttack(t *testing.T) {
	t.Run("all four neighbors", func(t *testing.T) {
		game := setupGame(t, 5,
			[]RobotPlacement{{Coordinate: At(2, 2), Direction: North}},
			[]Coordinate{At(1, 2), At(3, 2), At(2, 1), At(2, 3)},
		)

		outcome, err := game.Attack("r1")
		if err != nil {
			t.Fatalf("Failed to attack: %v", err)
		}
		if len(outcome.Defeated) != 4 {
			t.Errorf("Expected 4 defeated, got %d", len(outcome.Defeated))
		}
		if game.DinosaurCount() != 0 {
			t.Errorf("Expected 0 dinosaurs, got %d", game.DinosaurCount())
		}
		if !game.AllDinosaursDefeated() {
			t.Error("Expected all dinosaurs defeated")
		}
		if game.Moves() != 1 {
			t.Errorf("Expected 1 move for one attack, got %d", game.Moves())
		}
		for _, c := range []Coordinate{At(1, 2), At(3, 2), At(2, 1), At(2, 3)} {
			if game.Grid().Get(c) != 0 {
				t.Errorf("Expected %s cleared, got %d", c, game.Grid().Get(c))
			}
		}
		assertConsistent(t, game)
	})

	t.Run("diagonals are not hit", func(t *testing.T) {
		game := setupGame(t, 5,
			[]RobotPlacement{{Coordinate: At(2, 2), Direction: East}},
			[]Coordinate{At(1, 1), At(3, 3), At(1, 3), At(3, 1)},
		)

		outcome, err := game.Attack("r1")
		if err != nil {
			t.Fatalf("Failed to attack: %v", err)
		}
		if len(outcome.Defeated) != 0 {
			t.Errorf("Expected no defeated dinosaur, got %v", outcome.Defeated)
		}
		if game.DinosaurCount() != 4 {
			t.Errorf("Expected 4 dinosaurs, got %d", game.DinosaurCount())
		}
		if game.Moves() != 1 {
			t.Errorf("An attack hitting nothing still counts, expected 1 move, got %d", game.Moves())
		}
	})

	t.Run("corner robot ignores out of bounds neighbors", func(t *testing.T) {
		game := setupGame(t, 4,
			[]RobotPlacement{{Coordinate: At(0, 0), Direction: East}},
			[]Coordinate{At(0, 1)},
		)
		outcome, err := game.Attack("r1")
		if err != nil {
			t.Fatalf("Failed to attack: %v", err)
		}
		if len(outcome.Defeated) != 1 || outcome.Defeated[0] != At(0, 1) {
			t.Errorf("Expected (0,1) defeated, got %v", outcome.Defeated)
		}
	})

	t.Run("robots are not hit", func(t *testing.T) {
		game := setupGame(t, 5, []RobotPlacement{
			{Coordinate: At(2, 2), Direction: East},
			{Coordinate: At(2, 3), Direction: West},
		}, nil)
		if _, err := game.Attack("r1"); err != nil {
			t.Fatalf("Failed to attack: %v", err)
		}
		if game.RobotCount() != 2 {
			t.Errorf("Expected 2 robots, got %d", game.RobotCount())
		}
		if game.Grid().Get(At(2, 3)) != RobotPower {
			t.Error("Neighbor robot cell changed")
		}
	})

	t.Run("partial damage keeps the dinosaur", func(t *testing.T) {
		game := setupGame(t, 5,
			[]RobotPlacement{{Coordinate: At(2, 2), Direction: East}},
			[]Coordinate{At(2, 3)},
		)
		game.grid.Set(At(2, 3), 2)

		outcome, err := game.Attack("r1")
		if err != nil {
			t.Fatalf("Failed to attack: %v", err)
		}
		if len(outcome.Damaged) != 1 || len(outcome.Defeated) != 0 {
			t.Errorf("Expected 1 damaged and 0 defeated, got %v and %v", outcome.Damaged, outcome.Defeated)
		}
		if game.Grid().Get(At(2, 3)) != 1 {
			t.Errorf("Expected residual life 1, got %d", game.Grid().Get(At(2, 3)))
		}
		if !game.IsDinosaurAt(At(2, 3)) {
			t.Error("Damaged dinosaur was removed from the registry")
		}

		if _, err := game.Attack("r1"); err != nil {
			t.Fatalf("Failed second attack: %v", err)
		}
		if game.IsDinosaurAt(At(2, 3)) || game.Grid().Get(At(2, 3)) != 0 {
			t.Error("Expected dinosaur removed after second attack")
		}
		if game.Moves() != 2 {
			t.Errorf("Expected 2 moves, got %d", game.Moves())
		}
	})
}

func TestHistory(t *testing.T) {
	game := setupGame(t, 5,
		[]RobotPlacement{{Coordinate: At(0, 0), Direction: East}},
		[]Coordinate{At(0, 2)},
	)

	game.MoveForward("r1")
	game.MoveForward("r1") // blocked by the dinosaur
	game.Attack("r1")
	game.TurnRight("r1")

	history := game.History()
	if len(history) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(history))
	}

	expected := []Command{CommandForward, CommandAttack, CommandTurnRight}
	for i, rec := range history {
		if rec.Command != expected[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, expected[i], rec.Command)
		}
		if rec.MoveNumber != i+1 {
			t.Errorf("Entry %d: expected move number %d, got %d", i, i+1, rec.MoveNumber)
		}
		if rec.RobotID != "r1" {
			t.Errorf("Entry %d: expected robot r1, got %s", i, rec.RobotID)
		}
	}
	if len(history[1].Defeated) != 1 || history[1].Defeated[0] != At(0, 2) {
		t.Errorf("Expected attack entry to record (0,2), got %v", history[1].Defeated)
	}
	if history[2].Direction != South {
		t.Errorf("Expected turn entry to record S, got %s", history[2].Direction)
	}
}
