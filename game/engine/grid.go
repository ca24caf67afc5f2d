package engine

// Grid is a square matrix of cell values. Zero is empty, positive values are a
// dinosaur's remaining life and negative values a robot's attack power.
type Grid struct {
	dim   int
	cells [][]int
}

// NewGrid creates an all-zero dim x dim grid
func NewGrid(dim int) (*Grid, error) {
	if dim <= 0 {
		return nil, &Error{Kind: ErrInvalidDimension, Op: "create grid", Detail: "dimension must be positive"}
	}

	cells := make([][]int, dim)
	for i := range cells {
		cells[i] = make([]int, dim)
	}
	return &Grid{dim: dim, cells: cells}, nil
}

// Dim returns the side length of the grid
func (g *Grid) Dim() int {
	return g.dim
}

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < g.dim && c.Column >= 0 && c.Column < g.dim
}

// IsEmpty reports whether the cell at c holds zero. c must be in bounds.
func (g *Grid) IsEmpty(c Coordinate) bool {
	return g.cells[c.Row][c.Column] == 0
}

// Get returns the raw cell value at c. c must be in bounds.
func (g *Grid) Get(c Coordinate) int {
	return g.cells[c.Row][c.Column]
}

// Set writes the raw cell value at c. c must be in bounds.
func (g *Grid) Set(c Coordinate, value int) {
	g.cells[c.Row][c.Column] = value
}

// Cells returns a deep copy of the matrix
func (g *Grid) Cells() [][]int {
	out := make([][]int, g.dim)
	for i, row := range g.cells {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// EmptyCells returns every coordinate whose cell value is zero, in row-major order
func (g *Grid) EmptyCells() []Coordinate {
	var free []Coordinate
	for r, row := range g.cells {
		for c, v := range row {
			if v == 0 {
				free = append(free, Coordinate{Row: r, Column: c})
			}
		}
	}
	return free
}
