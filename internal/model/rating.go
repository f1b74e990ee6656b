package model

// Rank is a named rating tier
type Rank string

const (
	RankNovice      Rank = "novice"
	RankBronze      Rank = "bronze"
	RankSilver      Rank = "silver"
	RankGold        Rank = "gold"
	RankDiamond     Rank = "diamond"
	RankMaster      Rank = "master"
	RankGrandmaster Rank = "grandmaster"
)

// RatingChange is the outcome of resolving one match. Never persisted on its own.
type RatingChange struct {
	Player1Change int `json:"player1Change"`
	Player2Change int `json:"player2Change"`
	NewPlayer1Elo int `json:"newPlayer1Elo"`
	NewPlayer2Elo int `json:"newPlayer2Elo"`
}

// Change returns the delta for a player number
func (c RatingChange) Change(playerNumber int) int {
	if playerNumber == 1 {
		return c.Player1Change
	}
	return c.Player2Change
}

// NewElo returns the post-match rating for a player number
func (c RatingChange) NewElo(playerNumber int) int {
	if playerNumber == 1 {
		return c.NewPlayer1Elo
	}
	return c.NewPlayer2Elo
}
