package puzzle

import (
	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/model"
)

// Puzzle is a playable board together with its full solution
type Puzzle struct {
	Board    model.Grid
	Solution model.Grid
}

// Generator produces Sudoku solutions and playable puzzles.
// Uniqueness of the puzzle's solution is not enforced.
type Generator struct {
	random random.Random
}

// New creates a new Generator
func New(random random.Random) *Generator {
	return &Generator{
		random: random,
	}
}

// GenerateSolution returns a completely filled valid grid
func (g *Generator) GenerateSolution() model.Grid {
	var grid model.Grid
	g.fill(&grid)
	return grid
}

// fill solves the grid in place by randomized backtracking on the first blank cell
func (g *Generator) fill(grid *model.Grid) bool {
	pos, ok := grid.FirstEmpty()
	if !ok {
		return true
	}

	for _, digit := range g.shuffledDigits() {
		if !grid.CanPlace(pos, digit) {
			continue
		}
		grid.Set(pos, digit)
		if g.fill(grid) {
			return true
		}
		grid.Set(pos, 0)
	}
	return false
}

func (g *Generator) shuffledDigits() []int {
	digits := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	random.Shuffle(g.random, len(digits), func(i, j int) {
		digits[i], digits[j] = digits[j], digits[i]
	})
	return digits
}

// RemoveNumbers returns a copy of solution with the difficulty's blank count applied
func (g *Generator) RemoveNumbers(solution model.Grid, difficulty model.Difficulty) model.Grid {
	board := solution

	positions := make([]model.Position, 0, model.CellCount)
	for row := 0; row < model.GridSize; row++ {
		for col := 0; col < model.GridSize; col++ {
			positions = append(positions, model.Position{Row: row, Col: col})
		}
	}
	random.Shuffle(g.random, len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})

	for _, pos := range positions[:difficulty.CellsToRemove()] {
		board.Set(pos, 0)
	}
	return board
}

// GeneratePuzzle returns a fresh solution and the board derived from it
func (g *Generator) GeneratePuzzle(difficulty model.Difficulty) Puzzle {
	solution := g.GenerateSolution()
	return Puzzle{
		Board:    g.RemoveNumbers(solution, difficulty),
		Solution: solution,
	}
}
