package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/dependencies/ids"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/invite"
	"github.com/mcoot/sudokuduo/internal/services/puzzle"
	"github.com/mcoot/sudokuduo/internal/services/rating"
	"github.com/mcoot/sudokuduo/internal/storage"
)

const (
	// InviteURLPrefix is prepended to the code to form the shareable deep link
	InviteURLPrefix = "sudokuduo://join/"

	defaultHostName  = "Host"
	defaultGuestName = "Guest"
)

// CreateRequest holds the host's parameters for a private match
type CreateRequest struct {
	Difficulty  model.Difficulty
	Elo         int
	DisplayName string
}

// CreateResult is returned to the host after the lobby is created
type CreateResult struct {
	MatchID    model.MatchID
	InviteCode string
	InviteURL  string
}

// JoinRequest holds the guest's parameters for joining by code
type JoinRequest struct {
	InviteCode  string
	Elo         int
	DisplayName string
}

// HostSummary describes the host to a joining guest
type HostSummary struct {
	DisplayName string
	Elo         int
}

// JoinResult is returned to the guest after joining
type JoinResult struct {
	MatchID    model.MatchID
	Host       HostSummary
	Difficulty model.Difficulty
}

// Service manages invite-only matches between two friends
type Service struct {
	storage   storage.Storage
	puzzles   *puzzle.Generator
	allocator *invite.Allocator
	clock     clock.Clock
	ids       ids.Generator
	logger    *slog.Logger
}

// NewService creates a new private match Service
func NewService(
	store storage.Storage,
	puzzles *puzzle.Generator,
	allocator *invite.Allocator,
	clk clock.Clock,
	idGen ids.Generator,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   store,
		puzzles:   puzzles,
		allocator: allocator,
		clock:     clk,
		ids:       idGen,
		logger:    logger.With(slog.String("component", "private-match")),
	}
}

// CreatePrivateMatch opens a lobby held by host and returns its invite code
func (s *Service) CreatePrivateMatch(ctx context.Context, host model.PlayerID, req CreateRequest) (*CreateResult, error) {
	if !req.Difficulty.Valid() {
		return nil, model.ErrInvalidDifficulty
	}
	if !rating.ValidElo(req.Elo) {
		return nil, model.ErrInvalidElo
	}

	now := s.clock.Now()
	displayName := req.DisplayName
	if displayName == "" {
		displayName = defaultHostName
	}

	p := s.puzzles.GeneratePuzzle(req.Difficulty)
	match := &model.Match{
		MatchID:    model.MatchID(s.ids.NewID("")),
		Status:     model.MatchStatusLobby,
		Type:       model.MatchTypePrivate,
		Difficulty: req.Difficulty,
		CreatedAt:  now,
		ExpireAt:   now.Add(model.PrivateLobbyExpiry),
		Players: [2]model.PlayerSlot{
			{
				UID:          model.PlayerIDPtr(host),
				PlayerNumber: 1,
				DisplayName:  displayName,
				Elo:          req.Elo,
				JoinedAt:     now,
			},
			{PlayerNumber: 2},
		},
		PrivateMatch: true,
		HostUID:      host,
		GameState:    model.NewGameState(p.Board, p.Solution, now),
	}

	// The liveness check and the write are one atomic step per candidate code
	code, err := s.allocator.Claim(ctx, func(ctx context.Context, code string) (bool, error) {
		match.InviteCode = code
		err := s.storage.CreateInviteMatch(ctx, match, now)
		if errors.Is(err, model.ErrInviteCodeTaken) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("creating private match: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("private match created",
		slog.String("match_id", string(match.MatchID)),
		slog.String("user_id", string(host)),
		slog.String("invite_code", code),
		slog.String("difficulty", string(req.Difficulty)),
	)

	return &CreateResult{
		MatchID:    match.MatchID,
		InviteCode: code,
		InviteURL:  InviteURLPrefix + code,
	}, nil
}

// JoinPrivateMatch seats user in slot 2 of the lobby holding the code and starts the match.
// Concurrent joiners race on a compare-and-set; exactly one wins.
func (s *Service) JoinPrivateMatch(ctx context.Context, user model.PlayerID, req JoinRequest) (*JoinResult, error) {
	code := invite.Normalize(req.InviteCode)
	if code == "" {
		return nil, model.ErrInvalidInviteCode
	}
	if !rating.ValidElo(req.Elo) {
		return nil, model.ErrInvalidElo
	}

	now := s.clock.Now()
	lobby, err := s.storage.FindLobbyByInviteCode(ctx, code, now)
	if errors.Is(err, model.ErrInviteNotFound) {
		// A started match still holds its code but never accepts another player
		inUse, liveErr := s.storage.InviteCodeInUse(ctx, code, now)
		if liveErr != nil {
			return nil, liveErr
		}
		if inUse {
			return nil, model.ErrMatchFull
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if err := checkJoinable(lobby, user, now); err != nil {
		return nil, err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = defaultGuestName
	}

	joined, err := s.storage.UpdateMatch(ctx, lobby.MatchID, func(m *model.Match) error {
		// Re-check against the stored copy; another joiner may have won
		if err := checkJoinable(m, user, now); err != nil {
			return err
		}
		m.Players[1] = model.PlayerSlot{
			UID:          model.PlayerIDPtr(user),
			PlayerNumber: 2,
			DisplayName:  displayName,
			Elo:          req.Elo,
			IsReady:      true,
			JoinedAt:     now,
		}
		m.Status = model.MatchStatusActive
		m.StartedAt = &now
		m.ExpireAt = now.Add(model.ActiveMatchExpiry)
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrMatchNotFound) {
			return nil, model.ErrInviteNotFound
		}
		return nil, err
	}

	s.logger.Info("private match joined",
		slog.String("match_id", string(joined.MatchID)),
		slog.String("user_id", string(user)),
		slog.String("invite_code", code),
	)

	host := joined.Players[0]
	return &JoinResult{
		MatchID: joined.MatchID,
		Host: HostSummary{
			DisplayName: host.DisplayName,
			Elo:         host.Elo,
		},
		Difficulty: joined.Difficulty,
	}, nil
}

// checkJoinable reports why user cannot take slot 2, in precedence order
func checkJoinable(m *model.Match, user model.PlayerID, now time.Time) error {
	if m.Status == model.MatchStatusLobby && m.IsExpired(now) {
		return model.ErrInviteNotFound
	}
	if m.Players[0].Is(user) {
		return model.ErrCannotJoinOwnMatch
	}
	if m.Status != model.MatchStatusLobby || !m.Players[1].IsEmpty() {
		return model.ErrMatchFull
	}
	return nil
}
