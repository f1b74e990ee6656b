package settlement

import (
	"context"
	"log/slog"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/rating"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// EloPair holds a value per player number
type EloPair struct {
	Player1 int
	Player2 int
}

// RankPair holds a rank per player number
type RankPair struct {
	Player1 model.Rank
	Player2 model.Rank
}

// Result is returned to the caller after settlement
type Result struct {
	Player1EloChange int
	Player2EloChange int
	NewElos          EloPair
	NewRanks         RankPair
}

// Service applies rating changes once a match has completed
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a new settlement Service
func NewService(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "settlement")),
	}
}

// UpdateElo settles a completed match for both players in one atomic write.
// Ratings are taken from the match's slots. AI slots get no profile or history.
// A match can be settled only once.
func (s *Service) UpdateElo(ctx context.Context, caller model.PlayerID, matchID model.MatchID, winner int) (*Result, error) {
	if matchID == "" {
		return nil, model.ErrInvalidMatchID
	}
	if winner < 0 || winner > 2 {
		return nil, model.ErrInvalidWinner
	}

	now := s.clock.Now()
	var change model.RatingChange

	match, err := s.storage.SettleMatch(ctx, matchID, func(m *model.Match, profiles map[model.PlayerID]*model.Profile) (map[model.PlayerID]*model.HistoryEntry, error) {
		if m.Status != model.MatchStatusCompleted {
			return nil, model.ErrMatchNotCompleted
		}
		if !m.HasPlayer(caller) {
			return nil, model.ErrNotInMatch
		}
		if m.Settled {
			return nil, model.ErrMatchAlreadySettled
		}

		p1, p2 := &m.Players[0], &m.Players[1]
		change = rating.Resolve(p1.Elo, p2.Elo, winner)

		if m.Result == nil {
			m.Result = &model.MatchResult{Winner: winner}
		} else if m.Result.Winner != winner {
			s.logger.Warn("settlement winner differs from reported result",
				slog.String("match_id", string(m.MatchID)),
				slog.Int("reported", m.Result.Winner),
				slog.Int("settled", winner),
			)
		}
		m.Result.EloChanges = map[string]int{
			p1.EloKey(): change.Player1Change,
			p2.EloKey(): change.Player2Change,
		}
		m.Settled = true

		timestamp := now
		if m.CompletedAt != nil {
			timestamp = *m.CompletedAt
		}

		history := make(map[model.PlayerID]*model.HistoryEntry)
		for i := range m.Players {
			slot := &m.Players[i]
			if !slot.IsHuman() {
				continue
			}
			uid := *slot.UID
			opponent := &m.Players[1-i]
			newElo := change.NewElo(slot.PlayerNumber)
			outcome := model.OutcomeFor(slot.PlayerNumber, winner)

			profile, ok := profiles[uid]
			if !ok {
				profile = model.NewProfile(uid, slot.DisplayName, rating.RankTier(model.DefaultElo), now)
				profiles[uid] = profile
			}
			profile.RecordOutcome(outcome, newElo, rating.RankTier(newElo), now)

			yourErrors := m.GameState.Errors(slot.PlayerNumber)
			history[uid] = &model.HistoryEntry{
				MatchID:   m.MatchID,
				Timestamp: timestamp,
				Opponent: model.OpponentSummary{
					DisplayName: opponent.DisplayName,
					Elo:         opponent.Elo,
					IsAI:        opponent.IsAI,
				},
				Result:         outcome,
				EloChange:      change.Change(slot.PlayerNumber),
				Duration:       m.GameState.ElapsedTime,
				Difficulty:     m.Difficulty,
				YourErrors:     yourErrors,
				OpponentErrors: m.GameState.Errors(opponent.PlayerNumber),
				ErrorFree:      yourErrors == 0,
			}
		}
		return history, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match settled",
		slog.String("match_id", string(match.MatchID)),
		slog.String("user_id", string(caller)),
		slog.Int("winner", winner),
		slog.Int("player1_change", change.Player1Change),
		slog.Int("player2_change", change.Player2Change),
	)

	return &Result{
		Player1EloChange: change.Player1Change,
		Player2EloChange: change.Player2Change,
		NewElos: EloPair{
			Player1: change.NewPlayer1Elo,
			Player2: change.NewPlayer2Elo,
		},
		NewRanks: RankPair{
			Player1: rating.RankTier(change.NewPlayer1Elo),
			Player2: rating.RankTier(change.NewPlayer2Elo),
		},
	}, nil
}
