package engine

import (
	"fmt"
)

// RandomCounts returns how many robots and dinosaurs are placed at random on
// top of the explicit lists. A camp with no explicit entity and a zero count
// still gets one, so an empty scenario plays one robot against one dinosaur.
func (s *Scenario) RandomCounts() (robots, dinosaurs int) {
	robots, dinosaurs = s.RobotCount, s.DinosaurCount
	if robots == 0 && len(s.Robots) == 0 {
		robots = 1
	}
	if dinosaurs == 0 && len(s.Dinosaurs) == 0 {
		dinosaurs = 1
	}
	return robots, dinosaurs
}

// TotalEntities returns the number of entities the scenario will place
func (s *Scenario) TotalEntities() int {
	robots, dinosaurs := s.RandomCounts()
	return robots + dinosaurs + len(s.Robots) + len(s.Dinosaurs)
}

// ValidateScenario checks a scenario for correctness before any placement
func ValidateScenario(s *Scenario) error {
	const op = "validate scenario"

	if s == nil {
		return fmt.Errorf("scenario cannot be nil")
	}

	if s.GridDim < MinGridDim {
		return &Error{
			Kind:   ErrInvalidDimension,
			Op:     op,
			Detail: fmt.Sprintf("grid_dim must be at least %d, got %d", MinGridDim, s.GridDim),
		}
	}
	// Every game keeps a dim x dim matrix in memory
	if s.GridDim > MaxGridDim {
		return &Error{
			Kind:   ErrGridTooLarge,
			Op:     op,
			Detail: fmt.Sprintf("grid_dim is limited to %d to bound per-game memory, got %d", MaxGridDim, s.GridDim),
		}
	}

	if s.RobotCount < 0 {
		return &Error{Kind: ErrInvalidCount, Op: op, Detail: fmt.Sprintf("robot_count must not be negative, got %d", s.RobotCount)}
	}
	if s.DinosaurCount < 0 {
		return &Error{Kind: ErrInvalidCount, Op: op, Detail: fmt.Sprintf("dinosaur_count must not be negative, got %d", s.DinosaurCount)}
	}

	capacity := s.GridDim * s.GridDim
	if total := s.TotalEntities(); total > capacity {
		return &Error{
			Kind:   ErrGridFull,
			Op:     op,
			Detail: fmt.Sprintf("%d entities requested for %d cells", total, capacity),
		}
	}

	inBounds := func(c Coordinate) bool {
		return c.Row >= 0 && c.Row < s.GridDim && c.Column >= 0 && c.Column < s.GridDim
	}

	seen := make(map[Coordinate]string, len(s.Dinosaurs)+len(s.Robots))
	for i, d := range s.Dinosaurs {
		if !inBounds(d) {
			return &Error{Kind: ErrOutOfBounds, Op: op, Coordinate: at(d), Detail: fmt.Sprintf("dinosaurs[%d]", i)}
		}
		if prev, dup := seen[d]; dup {
			return &Error{Kind: ErrPositionOccupied, Op: op, Coordinate: at(d), Detail: fmt.Sprintf("dinosaurs[%d] overlaps %s", i, prev)}
		}
		seen[d] = fmt.Sprintf("dinosaurs[%d]", i)
	}

	for i, r := range s.Robots {
		if r.Direction != "" && !r.Direction.Valid() {
			return &Error{Kind: ErrInvalidDirection, Op: op, Detail: fmt.Sprintf("robots[%d] direction %q", i, r.Direction)}
		}
		if !inBounds(r.Coordinate) {
			return &Error{Kind: ErrOutOfBounds, Op: op, Coordinate: at(r.Coordinate), Detail: fmt.Sprintf("robots[%d]", i)}
		}
		if prev, dup := seen[r.Coordinate]; dup {
			return &Error{Kind: ErrPositionOccupied, Op: op, Coordinate: at(r.Coordinate), Detail: fmt.Sprintf("robots[%d] overlaps %s", i, prev)}
		}
		seen[r.Coordinate] = fmt.Sprintf("robots[%d]", i)
	}

	return nil
}

// NormalizeScenario upper-cases robot directions written in long or lower form
// ("north", "e") so they validate.
func NormalizeScenario(s *Scenario) error {
	for i := range s.Robots {
		dir, err := ParseDirection(string(s.Robots[i].Direction))
		if err != nil {
			return fmt.Errorf("robots[%d]: %w", i, err)
		}
		s.Robots[i].Direction = dir
	}
	return nil
}
