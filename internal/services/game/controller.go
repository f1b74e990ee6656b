package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// Report is what a participant submits when a match finishes
type Report struct {
	Winner          int
	Reason          model.WinReason
	ElapsedTime     int
	Player1Moves    int
	Player2Moves    int
	Player1Errors   int
	Player2Errors   int
	Player1Hints    int
	Player2Hints    int
	Player1Complete bool
	Player2Complete bool
}

func (r Report) validate() error {
	if r.Winner < 0 || r.Winner > 2 {
		return model.ErrInvalidWinner
	}
	if !model.ValidWinReason(r.Reason) {
		return model.ErrInvalidMatchReport
	}
	for _, n := range []int{
		r.ElapsedTime,
		r.Player1Moves, r.Player2Moves,
		r.Player1Errors, r.Player2Errors,
		r.Player1Hints, r.Player2Hints,
	} {
		if n < 0 {
			return model.ErrInvalidMatchReport
		}
	}
	return nil
}

// Controller manages the match state machine after creation
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new game Controller
func NewController(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "game")),
	}
}

// GetMatch returns a match to one of its participants.
// Lobbies past their expiry are reported as expired.
func (c *Controller) GetMatch(ctx context.Context, matchID model.MatchID, caller model.PlayerID) (*model.Match, error) {
	m, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasPlayer(caller) {
		return nil, model.ErrNotInMatch
	}
	m.Status = m.EffectiveStatus(c.clock.Now())
	return m, nil
}

// MarkReady flags the caller as ready. A ranked lobby starts once both humans are ready.
func (c *Controller) MarkReady(ctx context.Context, matchID model.MatchID, caller model.PlayerID) (*model.Match, error) {
	started := false
	m, err := c.storage.UpdateMatch(ctx, matchID, func(m *model.Match) error {
		started = false
		now := c.clock.Now()

		slot := m.SlotFor(caller)
		if slot == nil {
			return model.ErrNotInMatch
		}

		switch m.EffectiveStatus(now) {
		case model.MatchStatusActive:
			slot.IsReady = true
			return nil
		case model.MatchStatusLobby:
		case model.MatchStatusCompleted:
			return model.ErrMatchAlreadyComplete
		default:
			return model.ErrMatchNotActive
		}

		slot.IsReady = true
		if m.Type != model.MatchTypeRanked {
			return nil
		}
		for i := range m.Players {
			p := &m.Players[i]
			if p.IsEmpty() || (p.IsHuman() && !p.IsReady) {
				return nil
			}
		}

		m.Status = model.MatchStatusActive
		m.StartedAt = &now
		m.ExpireAt = now.Add(model.ActiveMatchExpiry)
		m.GameState.LastMoveAt = now
		started = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		c.logger.Info("match started",
			slog.String("match_id", string(matchID)),
			slog.String("user_id", string(caller)),
		)
	}
	return m, nil
}

// CompleteMatch records the final result of an active match.
// Rating changes are applied separately by settlement.
func (c *Controller) CompleteMatch(ctx context.Context, matchID model.MatchID, caller model.PlayerID, report Report) (*model.Match, error) {
	if err := report.validate(); err != nil {
		return nil, err
	}

	m, err := c.storage.UpdateMatch(ctx, matchID, func(m *model.Match) error {
		if !m.HasPlayer(caller) {
			return model.ErrNotInMatch
		}
		switch m.Status {
		case model.MatchStatusActive:
		case model.MatchStatusCompleted:
			return model.ErrMatchAlreadyComplete
		default:
			return model.ErrMatchNotActive
		}

		now := c.clock.Now()
		gs := &m.GameState
		gs.Player1Moves = report.Player1Moves
		gs.Player2Moves = report.Player2Moves
		gs.Player1Errors = report.Player1Errors
		gs.Player2Errors = report.Player2Errors
		gs.Player1Hints = report.Player1Hints
		gs.Player2Hints = report.Player2Hints
		gs.Player1Complete = report.Player1Complete
		gs.Player2Complete = report.Player2Complete
		gs.ElapsedTime = report.ElapsedTime
		gs.LastMoveAt = now

		result := &model.MatchResult{
			Winner:    report.Winner,
			Reason:    report.Reason,
			FinalTime: report.ElapsedTime,
		}
		if winner := m.Slot(report.Winner); winner != nil && winner.IsHuman() {
			id := *winner.UID
			result.WinnerUID = &id
		}

		m.Status = model.MatchStatusCompleted
		m.CompletedAt = &now
		m.ExpireAt = now.Add(model.CompletedMatchRetention)
		m.Result = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("match completed",
		slog.String("match_id", string(matchID)),
		slog.String("user_id", string(caller)),
		slog.Int("winner", report.Winner),
		slog.String("reason", string(report.Reason)),
		slog.Int("elapsed_time", report.ElapsedTime),
	)
	return m, nil
}
