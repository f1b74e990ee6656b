package model

// Difficulty selects how many cells are blanked in the shared puzzle
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// ValidDifficulties returns all difficulty tiers in ascending order
func ValidDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}
}

// Valid returns true if d is one of the four tiers
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	default:
		return false
	}
}

// CellsToRemove returns the number of blanks for the tier, or 0 if unknown
func (d Difficulty) CellsToRemove() int {
	switch d {
	case DifficultyEasy:
		return 40
	case DifficultyMedium:
		return 50
	case DifficultyHard:
		return 55
	case DifficultyExpert:
		return 60
	default:
		return 0
	}
}
