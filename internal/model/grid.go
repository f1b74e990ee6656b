package model

const (
	// GridSize is the dimension of a Sudoku grid
	GridSize = 9
	// BoxSize is the dimension of a 3x3 box
	BoxSize = 3
	// CellCount is the number of cells on the grid
	CellCount = GridSize * GridSize
)

// Position identifies a cell on the grid
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Grid is a 9x9 Sudoku grid. Row-major: Grid[row][col], 0 means blank.
type Grid [GridSize][GridSize]int

// Get returns the digit at the given position, or 0 if blank or out of range
func (g *Grid) Get(pos Position) int {
	if !IsValidPosition(pos) {
		return 0
	}
	return g[pos.Row][pos.Col]
}

// Set places a digit at the given position
func (g *Grid) Set(pos Position, digit int) {
	if IsValidPosition(pos) {
		g[pos.Row][pos.Col] = digit
	}
}

// IsEmpty returns true if the cell at the given position is blank
func (g *Grid) IsEmpty(pos Position) bool {
	return g.Get(pos) == 0
}

// IsValidPosition returns true if the position is within bounds
func IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < GridSize && pos.Col >= 0 && pos.Col < GridSize
}

// FirstEmpty returns the first blank cell in row-major order
func (g *Grid) FirstEmpty() (Position, bool) {
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if g[row][col] == 0 {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

// IsFull returns true if all cells are filled
func (g *Grid) IsFull() bool {
	_, ok := g.FirstEmpty()
	return !ok
}

// EmptyCount returns the number of blank cells
func (g *Grid) EmptyCount() int {
	count := 0
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if g[row][col] == 0 {
				count++
			}
		}
	}
	return count
}

// CanPlace returns true if digit does not already appear in the cell's row, column or box
func (g *Grid) CanPlace(pos Position, digit int) bool {
	for i := 0; i < GridSize; i++ {
		if g[pos.Row][i] == digit || g[i][pos.Col] == digit {
			return false
		}
	}
	startRow := pos.Row - pos.Row%BoxSize
	startCol := pos.Col - pos.Col%BoxSize
	for r := startRow; r < startRow+BoxSize; r++ {
		for c := startCol; c < startCol+BoxSize; c++ {
			if g[r][c] == digit {
				return false
			}
		}
	}
	return true
}
