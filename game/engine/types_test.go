package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestCoordinateJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Coordinate
		wantErr  bool
	}{
		{"object form", `{"row": 3, "column": 7}`, At(3, 7), false},
		{"tuple form", `[4, 1]`, At(4, 1), false},
		{"tuple with three values", `[1, 2, 3]`, Coordinate{}, true},
		{"string", `"a"`, Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Coordinate
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, c)
			}
		})
	}

	data, err := json.Marshal(At(1, 2))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(data) != `{"row":1,"column":2}` {
		t.Errorf("Unexpected encoding: %s", data)
	}
}

func TestCoordinateYAML(t *testing.T) {
	input := `
name: yaml
grid_dim: 5
dinosaurs:
  - [1, 2]
  - {row: 3, column: 4}
robots:
  - coordinate: [0, 0]
    direction: S
`
	var s Scenario
	if err := yaml.Unmarshal([]byte(input), &s); err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(s.Dinosaurs) != 2 || s.Dinosaurs[0] != At(1, 2) || s.Dinosaurs[1] != At(3, 4) {
		t.Errorf("Unexpected dinosaurs: %v", s.Dinosaurs)
	}
	if len(s.Robots) != 1 || s.Robots[0].Coordinate != At(0, 0) || s.Robots[0].Direction != South {
		t.Errorf("Unexpected robots: %+v", s.Robots)
	}

	var bad Coordinate
	if err := yaml.Unmarshal([]byte(`[1]`), &bad); err == nil {
		t.Error("Expected error for a one-element coordinate")
	}
}

func TestDirectionRotation(t *testing.T) {
	for _, d := range Directions {
		if d.Right().Left() != d {
			t.Errorf("Right then left from %s gave %s", d, d.Right().Left())
		}
		r := d
		for i := 0; i < 4; i++ {
			r = r.Right()
		}
		if r != d {
			t.Errorf("Four right turns from %s gave %s", d, r)
		}
	}

	if East.Right() != South || South.Right() != West || West.Right() != North || North.Right() != East {
		t.Error("Right rotation is not clockwise")
	}
	if East.Left() != North {
		t.Errorf("Expected E left to be N, got %s", East.Left())
	}
}

func TestDirectionStep(t *testing.T) {
	tests := []struct {
		dir   Direction
		axis  Axis
		delta int
	}{
		{East, ColumnAxis, 1},
		{West, ColumnAxis, -1},
		{South, RowAxis, 1},
		{North, RowAxis, -1},
	}
	for _, tt := range tests {
		axis, delta := tt.dir.Step()
		if axis != tt.axis || delta != tt.delta {
			t.Errorf("%s: expected (%d,%d), got (%d,%d)", tt.dir, tt.axis, tt.delta, axis, delta)
		}
	}
}

func TestParseDirection(t *testing.T) {
	valid := map[string]Direction{
		"":       East,
		"E":      East,
		"south":  South,
		" West ": West,
		"n":      North,
		"NORTH":  North,
	}
	for input, want := range valid {
		got, err := ParseDirection(input)
		if err != nil {
			t.Errorf("ParseDirection(%q): unexpected error %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDirection(%q): expected %s, got %s", input, want, got)
		}
	}

	for _, input := range []string{"X", "up", "northeast"} {
		if _, err := ParseDirection(input); !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("ParseDirection(%q): expected ErrInvalidDirection, got %v", input, err)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := map[string]Command{
		"forward":       CommandForward,
		"move forward":  CommandForward,
		"0":             CommandForward,
		"Move_Backward": CommandBackward,
		"back":          CommandBackward,
		"turn right":    CommandTurnRight,
		"turnRight":     CommandTurnRight,
		"turn-left":     CommandTurnLeft,
		"3":             CommandTurnLeft,
		"ATTACK":        CommandAttack,
		"4":             CommandAttack,
	}
	for input, want := range tests {
		got, err := ParseCommand(input)
		if err != nil {
			t.Errorf("ParseCommand(%q): unexpected error %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCommand(%q): expected %s, got %s", input, want, got)
		}
	}

	for _, input := range []string{"", "5", "jump", "fly away"} {
		if _, err := ParseCommand(input); !errors.Is(err, ErrUnsupportedCommand) {
			t.Errorf("ParseCommand(%q): expected ErrUnsupportedCommand, got %v", input, err)
		}
	}
}

func TestErrorCode(t *testing.T) {
	err := &Error{Kind: ErrOutOfBounds, Op: "move forward", RobotID: "r1", Coordinate: at(At(0, 10))}
	if ErrorCode(err) != "out_of_bounds" {
		t.Errorf("Expected out_of_bounds, got %q", ErrorCode(err))
	}
	if err.Error() != "move forward: position is out of grid at (0,10) (robot r1)" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	tooLarge := &Error{Kind: ErrGridTooLarge, Op: "validate scenario"}
	if ErrorCode(tooLarge) != "grid_too_large" || errors.Is(tooLarge, ErrInvalidDimension) {
		t.Errorf("Expected a distinct grid_too_large code, got %q", ErrorCode(tooLarge))
	}
	if ErrorCode(errors.New("other")) != "" {
		t.Error("Expected empty code for a foreign error")
	}
}

func TestCellHelpers(t *testing.T) {
	if CellChar(DinosaurLife) != "D" || CellChar(RobotPower) != "R" || CellChar(0) != "." {
		t.Error("Unexpected cell characters")
	}
	if CellKind(3) != "dinosaur" || CellKind(-2) != "robot" || CellKind(0) != "empty" {
		t.Error("Unexpected cell kinds")
	}

	game := setupGame(t, 6,
		[]RobotPlacement{{Coordinate: At(2, 2)}},
		[]Coordinate{At(2, 3), At(5, 5)},
	)
	state := game.State()

	nearest, distance, ok := NearestDinosaur(state, At(2, 2))
	if !ok || nearest != At(2, 3) || distance != 1 {
		t.Errorf("Expected nearest (2,3) at 1, got %s at %d", nearest, distance)
	}
	if hits := AdjacentDinosaurs(state, At(2, 2)); len(hits) != 1 || hits[0] != At(2, 3) {
		t.Errorf("Expected one adjacent dinosaur, got %v", hits)
	}
	if ManhattanDistance(At(0, 0), At(3, 4)) != 7 {
		t.Error("Unexpected Manhattan distance")
	}
}
