package engine

// Dinosaurs returns the positions of every live dinosaur, in placement order
func (g *Game) Dinosaurs() []Coordinate {
	return append([]Coordinate{}, g.dinosaurs...)
}

// DinosaurCount returns the number of live dinosaurs
func (g *Game) DinosaurCount() int {
	return len(g.dinosaurs)
}

// Robots returns copies of every robot record, in placement order
func (g *Game) Robots() []Robot {
	robots := make([]Robot, 0, g.robots.Len())
	for pair := g.robots.Oldest(); pair != nil; pair = pair.Next() {
		robots = append(robots, *pair.Value)
	}
	return robots
}

// RobotCount returns the number of robots
func (g *Game) RobotCount() int {
	return g.robots.Len()
}

// Robot looks up a robot by id
func (g *Game) Robot(id string) (Robot, bool) {
	r, ok := g.robots.Get(id)
	if !ok {
		return Robot{}, false
	}
	return *r, true
}

// RobotAt returns the robot at the given placement index, wrapping modulo the
// robot count. Negative indexes wrap from the end.
func (g *Game) RobotAt(index int) (Robot, bool) {
	n := g.robots.Len()
	if n == 0 {
		return Robot{}, false
	}
	index = ((index % n) + n) % n
	pair := g.robots.Oldest()
	for i := 0; i < index; i++ {
		pair = pair.Next()
	}
	return *pair.Value, true
}

// IsDinosaurAt reports whether a live dinosaur is recorded at c
func (g *Game) IsDinosaurAt(c Coordinate) bool {
	return g.dinosaurIndex(c) >= 0
}

func (g *Game) dinosaurIndex(c Coordinate) int {
	for i, d := range g.dinosaurs {
		if d == c {
			return i
		}
	}
	return -1
}

func (g *Game) removeDinosaur(c Coordinate) bool {
	i := g.dinosaurIndex(c)
	if i < 0 {
		return false
	}
	g.dinosaurs = append(g.dinosaurs[:i], g.dinosaurs[i+1:]...)
	return true
}

// taken reports whether c is occupied by any entity
func (g *Game) taken(c Coordinate) bool {
	if g.materialized {
		return !g.grid.IsEmpty(c)
	}
	_, ok := g.pending[c]
	return ok
}
