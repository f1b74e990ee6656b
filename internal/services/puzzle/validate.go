package puzzle

import "github.com/mcoot/sudokuduo/internal/model"

// IsValidSolution returns true if grid is full and every row, column and box holds 1-9 once
func IsValidSolution(grid model.Grid) bool {
	if !grid.IsFull() {
		return false
	}
	return hasNoConflicts(grid)
}

// IsConsistent returns true if every filled cell of board matches solution
func IsConsistent(board, solution model.Grid) bool {
	for row := 0; row < model.GridSize; row++ {
		for col := 0; col < model.GridSize; col++ {
			if v := board[row][col]; v != 0 && v != solution[row][col] {
				return false
			}
		}
	}
	return true
}

func hasNoConflicts(grid model.Grid) bool {
	for i := 0; i < model.GridSize; i++ {
		var rowSeen, colSeen, boxSeen [model.GridSize + 1]bool
		for j := 0; j < model.GridSize; j++ {
			boxRow := (i/model.BoxSize)*model.BoxSize + j/model.BoxSize
			boxCol := (i%model.BoxSize)*model.BoxSize + j%model.BoxSize
			for _, cell := range []struct {
				v    int
				seen *[model.GridSize + 1]bool
			}{
				{grid[i][j], &rowSeen},
				{grid[j][i], &colSeen},
				{grid[boxRow][boxCol], &boxSeen},
			} {
				if cell.v < 0 || cell.v > model.GridSize {
					return false
				}
				if cell.v == 0 {
					continue
				}
				if cell.seen[cell.v] {
					return false
				}
				cell.seen[cell.v] = true
			}
		}
	}
	return true
}

// CountSolutions counts solutions of board, stopping once limit is reached.
// Puzzle generation does not call this; generated puzzles may have several solutions.
func CountSolutions(board model.Grid, limit int) int {
	if !hasNoConflicts(board) {
		return 0
	}
	count := 0
	countFrom(&board, limit, &count)
	return count
}

func countFrom(grid *model.Grid, limit int, count *int) {
	pos, ok := grid.FirstEmpty()
	if !ok {
		*count++
		return
	}
	for digit := 1; digit <= model.GridSize; digit++ {
		if *count >= limit {
			return
		}
		if !grid.CanPlace(pos, digit) {
			continue
		}
		grid.Set(pos, digit)
		countFrom(grid, limit, count)
		grid.Set(pos, 0)
	}
}
