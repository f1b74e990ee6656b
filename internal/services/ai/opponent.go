package ai

import (
	"log/slog"

	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/model"
)

// MaxEloOffset bounds how far an AI opponent's rating strays from the player's
const MaxEloOffset = 50

var (
	firstNames = []string{"Alex", "Taylor", "Jordan", "Casey", "Morgan", "Riley", "Avery", "Quinn"}
	lastNames  = []string{"Smith", "Chen", "Kumar", "Müller", "Garcia", "Johnson", "Lee", "Brown"}
)

// Opponent describes a generated AI opponent
type Opponent struct {
	DisplayName string
	Elo         int
}

// Factory creates AI opponents for matchmaking fallback
type Factory struct {
	random random.Random
	logger *slog.Logger
}

// NewFactory creates a new AI opponent Factory
func NewFactory(rnd random.Random, logger *slog.Logger) *Factory {
	return &Factory{
		random: rnd,
		logger: logger.With(slog.String("component", "ai-factory")),
	}
}

// NewOpponent returns an opponent rated within MaxEloOffset of elo (offset in [-50, 49])
func (f *Factory) NewOpponent(elo int) Opponent {
	offset := f.random.Intn(2*MaxEloOffset) - MaxEloOffset
	opp := Opponent{
		DisplayName: f.Name(),
		Elo:         clampElo(elo + offset),
	}

	f.logger.Debug("generated ai opponent",
		slog.String("display_name", opp.DisplayName),
		slog.Int("elo", opp.Elo),
	)
	return opp
}

// Name returns a random "First Last" display name
func (f *Factory) Name() string {
	first := firstNames[f.random.Intn(len(firstNames))]
	last := lastNames[f.random.Intn(len(lastNames))]
	return first + " " + last
}

func clampElo(r int) int {
	if r < model.MinElo {
		return model.MinElo
	}
	if r > model.MaxElo {
		return model.MaxElo
	}
	return r
}
