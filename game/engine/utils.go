package engine

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(from, to Coordinate) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Column - to.Column
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// NearestDinosaur finds the closest live dinosaur to from and returns its position and distance
func NearestDinosaur(state *State, from Coordinate) (Coordinate, int, bool) {
	minDistance := -1
	var nearest Coordinate

	for _, d := range state.Dinosaurs {
		distance := ManhattanDistance(from, d)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = d
		}
	}

	return nearest, minDistance, minDistance >= 0
}

// AdjacentDinosaurs returns the dinosaurs an attack from c would hit
func AdjacentDinosaurs(state *State, c Coordinate) []Coordinate {
	var hits []Coordinate
	for _, n := range c.Neighbors() {
		if n.Row < 0 || n.Row >= state.Dim || n.Column < 0 || n.Column >= state.Dim {
			continue
		}
		if state.Grid[n.Row][n.Column] > 0 {
			hits = append(hits, n)
		}
	}
	return hits
}

// CellKind names what occupies a raw cell value
func CellKind(value int) string {
	switch {
	case value > 0:
		return "dinosaur"
	case value < 0:
		return "robot"
	}
	return "empty"
}

// CellChar returns the one-character board symbol for a raw cell value
func CellChar(value int) string {
	switch {
	case value > 0:
		return "D"
	case value < 0:
		return "R"
	}
	return "."
}
