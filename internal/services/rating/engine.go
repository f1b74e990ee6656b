package rating

import (
	"math"

	"github.com/mcoot/sudokuduo/internal/model"
)

const (
	// DefaultKFactor is the maximum swing of a single match before clamping
	DefaultKFactor = 32
	// MaxChange caps the absolute delta of one match
	MaxChange = 50
)

// Change returns the rating delta for a player rated a facing an opponent rated b.
// Halves round towards positive infinity.
func Change(a, b int, won bool, kFactor int) int {
	expected := 1 / (1 + math.Pow(10, float64(b-a)/400))
	actual := 0.0
	if won {
		actual = 1
	}

	delta := int(math.Floor(float64(kFactor)*(actual-expected) + 0.5))
	return clamp(delta, -MaxChange, MaxChange)
}

// Resolve computes both players' deltas for a match outcome.
// winner is 0 for a tie, otherwise the winning player number. A tie leaves both ratings unchanged.
// Each side is computed independently so the deltas need not be exact negatives.
func Resolve(rating1, rating2, winner int) model.RatingChange {
	if winner == 0 {
		return model.RatingChange{
			NewPlayer1Elo: rating1,
			NewPlayer2Elo: rating2,
		}
	}

	change1 := Change(rating1, rating2, winner == 1, DefaultKFactor)
	change2 := Change(rating2, rating1, winner == 2, DefaultKFactor)

	return model.RatingChange{
		Player1Change: change1,
		Player2Change: change2,
		NewPlayer1Elo: rating1 + change1,
		NewPlayer2Elo: rating2 + change2,
	}
}

// RankTier maps a rating to its display tier
func RankTier(r int) model.Rank {
	switch {
	case r < 1000:
		return model.RankNovice
	case r < 1200:
		return model.RankBronze
	case r < 1400:
		return model.RankSilver
	case r < 1600:
		return model.RankGold
	case r < 1800:
		return model.RankDiamond
	case r < 2000:
		return model.RankMaster
	default:
		return model.RankGrandmaster
	}
}

// ValidElo returns true if r is inside the accepted client range
func ValidElo(r int) bool {
	return r >= model.MinElo && r <= model.MaxElo
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
