package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/dependencies/ids"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/notify"
	"github.com/mcoot/sudokuduo/internal/services/ai"
	"github.com/mcoot/sudokuduo/internal/services/puzzle"
	"github.com/mcoot/sudokuduo/internal/services/rating"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// Config holds matchmaking tuning
type Config struct {
	// WaitTimeout is how long a searcher waits to be picked before falling back to AI
	WaitTimeout time.Duration
	// CandidateLimit caps how many waiting opponents are considered per search
	CandidateLimit int
}

// DefaultConfig returns default matchmaking configuration
func DefaultConfig() Config {
	return Config{
		WaitTimeout:    5 * time.Second,
		CandidateLimit: 10,
	}
}

// Request holds a searcher's parameters
type Request struct {
	Difficulty  model.Difficulty
	Elo         int
	DisplayName string
}

// Opponent describes who the searcher was paired with
type Opponent struct {
	DisplayName string
	Elo         int
	IsAI        bool
}

// Result is the outcome of a search
type Result struct {
	MatchID       model.MatchID
	OpponentFound bool
	AIOpponent    bool
	Opponent      Opponent
}

// Service pairs searching players into ranked matches, falling back to AI opponents
type Service struct {
	storage  storage.Storage
	notifier notify.Notifier
	puzzles  *puzzle.Generator
	ai       *ai.Factory
	clock    clock.Clock
	ids      ids.Generator
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a new matchmaking Service
func NewService(
	store storage.Storage,
	notifier notify.Notifier,
	puzzles *puzzle.Generator,
	aiFactory *ai.Factory,
	clk clock.Clock,
	idGen ids.Generator,
	cfg Config,
	logger *slog.Logger,
) *Service {
	defaults := DefaultConfig()
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaults.WaitTimeout
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = defaults.CandidateLimit
	}
	return &Service{
		storage:  store,
		notifier: notifier,
		puzzles:  puzzles,
		ai:       aiFactory,
		clock:    clk,
		ids:      idGen,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "matchmaking")),
	}
}

// FindMatch enqueues user, tries to pair with a waiting opponent, waits once for
// another searcher to pick them, and otherwise creates an AI match.
func (s *Service) FindMatch(ctx context.Context, user model.PlayerID, req Request) (*Result, error) {
	if !req.Difficulty.Valid() {
		return nil, model.ErrInvalidDifficulty
	}
	if !rating.ValidElo(req.Elo) {
		return nil, model.ErrInvalidElo
	}

	logger := s.logger.With(slog.String("user_id", string(user)))

	// Subscribe before the entry becomes visible so no pairing signal is missed
	sub, err := s.notifier.Subscribe(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("subscribing to notifications: %w", err)
	}
	defer sub.Close()

	now := s.clock.Now()
	entry := &model.QueueEntry{
		UserID:          user,
		DisplayName:     s.displayName(ctx, user, req.DisplayName),
		Difficulty:      req.Difficulty,
		Elo:             req.Elo,
		EloMin:          req.Elo - model.EloBand,
		EloMax:          req.Elo + model.EloBand,
		SearchStartedAt: now,
		ExpireAt:        now.Add(model.QueueEntryTTL),
	}
	if err := s.storage.SaveQueueEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving queue entry: %w", err)
	}

	logger.Info("searching for opponent",
		slog.Int("elo", req.Elo),
		slog.String("difficulty", string(req.Difficulty)),
	)

	result, err := s.pairWithCandidate(ctx, entry, logger)
	if err != nil || result != nil {
		if err != nil {
			s.abandon(ctx, user, logger)
		}
		return result, err
	}

	select {
	case matchID, ok := <-sub.C():
		if ok {
			if result := s.resultFromMatchID(ctx, user, matchID); result != nil {
				logger.Info("paired while waiting", slog.String("match_id", string(matchID)))
				return result, nil
			}
		}
	case <-s.clock.After(s.cfg.WaitTimeout):
	case <-ctx.Done():
		s.abandon(ctx, user, logger)
		return nil, ctx.Err()
	}

	return s.resolveOwnEntry(ctx, entry, logger)
}

// pairWithCandidate tries each compatible waiting opponent in order.
// Returns nil, nil when nobody could be claimed.
func (s *Service) pairWithCandidate(ctx context.Context, entry *model.QueueEntry, logger *slog.Logger) (*Result, error) {
	candidates, err := s.storage.FindQueueCandidates(ctx, model.CandidateQuery{
		Difficulty: entry.Difficulty,
		EloMin:     entry.EloMin,
		EloMax:     entry.EloMax,
		Exclude:    entry.UserID,
		Now:        entry.SearchStartedAt,
		Limit:      s.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("finding candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	p := s.puzzles.GeneratePuzzle(entry.Difficulty)
	for _, candidate := range candidates {
		match := s.newRankedMatch(entry, candidate, p)
		err := s.storage.ClaimQueueEntries(ctx, []model.PlayerID{entry.UserID, candidate.UserID}, match)
		if err == nil {
			logger.Info("ranked match created",
				slog.String("match_id", string(match.MatchID)),
				slog.String("opponent_id", string(candidate.UserID)),
			)
			if err := s.notifier.Publish(ctx, candidate.UserID, match.MatchID); err != nil {
				// The opponent still finds the match by re-checking its queue entry
				logger.Warn("failed to notify opponent",
					slog.String("opponent_id", string(candidate.UserID)),
					slog.Any("error", err),
				)
			}
			return &Result{
				MatchID:       match.MatchID,
				OpponentFound: true,
				Opponent: Opponent{
					DisplayName: match.Players[1].DisplayName,
					Elo:         match.Players[1].Elo,
				},
			}, nil
		}
		if !errors.Is(err, model.ErrQueueEntryNotFound) {
			return nil, fmt.Errorf("claiming queue entries: %w", err)
		}

		// Either the candidate or the searcher was claimed by someone else
		if _, err := s.storage.GetQueueEntry(ctx, entry.UserID); errors.Is(err, model.ErrQueueEntryNotFound) {
			return s.resolveOwnEntry(ctx, entry, logger)
		} else if err != nil {
			return nil, fmt.Errorf("checking queue entry: %w", err)
		}
		logger.Debug("candidate already taken", slog.String("opponent_id", string(candidate.UserID)))
	}
	return nil, nil
}

// resolveOwnEntry re-checks the searcher's own entry once the wait is over
func (s *Service) resolveOwnEntry(ctx context.Context, entry *model.QueueEntry, logger *slog.Logger) (*Result, error) {
	_, err := s.storage.GetQueueEntry(ctx, entry.UserID)
	if errors.Is(err, model.ErrQueueEntryNotFound) {
		result, err := s.resolvePaired(ctx, entry, logger)
		if err == nil || !errors.Is(err, model.ErrMatchNotFound) {
			return result, err
		}
		// Entry lapsed without a pairing; fall back to AI without a claim
		return s.createAIMatch(ctx, entry, false, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("checking queue entry: %w", err)
	}
	return s.createAIMatch(ctx, entry, true, logger)
}

// resolvePaired loads the match another searcher placed us in
func (s *Service) resolvePaired(ctx context.Context, entry *model.QueueEntry, logger *slog.Logger) (*Result, error) {
	match, err := s.storage.LatestMatchForPlayer(ctx, entry.UserID, entry.SearchStartedAt)
	if err != nil {
		return nil, err
	}
	logger.Info("paired by another searcher", slog.String("match_id", string(match.MatchID)))
	return resultFor(match, entry.UserID), nil
}

func (s *Service) resultFromMatchID(ctx context.Context, user model.PlayerID, matchID model.MatchID) *Result {
	match, err := s.storage.GetMatch(ctx, matchID)
	if err != nil || !match.HasPlayer(user) {
		return nil
	}
	return resultFor(match, user)
}

func (s *Service) createAIMatch(ctx context.Context, entry *model.QueueEntry, claim bool, logger *slog.Logger) (*Result, error) {
	now := s.clock.Now()
	opponent := s.ai.NewOpponent(entry.Elo)
	p := s.puzzles.GeneratePuzzle(entry.Difficulty)

	match := &model.Match{
		MatchID:    model.MatchID(s.ids.NewID("")),
		Status:     model.MatchStatusActive,
		Type:       model.MatchTypeAI,
		Difficulty: entry.Difficulty,
		CreatedAt:  now,
		StartedAt:  &now,
		ExpireAt:   now.Add(model.ActiveMatchExpiry),
		Players: [2]model.PlayerSlot{
			{
				UID:          model.PlayerIDPtr(entry.UserID),
				PlayerNumber: 1,
				DisplayName:  orDefault(entry.DisplayName, "Player 1"),
				Elo:          entry.Elo,
				IsReady:      true,
				JoinedAt:     now,
			},
			{
				PlayerNumber: 2,
				DisplayName:  opponent.DisplayName,
				Elo:          opponent.Elo,
				IsAI:         true,
				IsReady:      true,
				JoinedAt:     now,
			},
		},
		HostUID:   entry.UserID,
		GameState: model.NewGameState(p.Board, p.Solution, now),
	}

	var err error
	if claim {
		err = s.storage.ClaimQueueEntries(ctx, []model.PlayerID{entry.UserID}, match)
	} else {
		err = s.storage.CreateMatch(ctx, match)
	}
	if errors.Is(err, model.ErrQueueEntryNotFound) {
		// Paired between the re-check and the claim
		return s.resolvePaired(ctx, entry, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("creating ai match: %w", err)
	}

	logger.Info("ai match created",
		slog.String("match_id", string(match.MatchID)),
		slog.String("ai_name", opponent.DisplayName),
		slog.Int("ai_elo", opponent.Elo),
	)
	return &Result{
		MatchID:    match.MatchID,
		AIOpponent: true,
		Opponent: Opponent{
			DisplayName: opponent.DisplayName,
			Elo:         opponent.Elo,
			IsAI:        true,
		},
	}, nil
}

func (s *Service) newRankedMatch(self, candidate *model.QueueEntry, p puzzle.Puzzle) *model.Match {
	now := s.clock.Now()
	return &model.Match{
		MatchID:    model.MatchID(s.ids.NewID("")),
		Status:     model.MatchStatusLobby,
		Type:       model.MatchTypeRanked,
		Difficulty: self.Difficulty,
		CreatedAt:  now,
		ExpireAt:   now.Add(model.ActiveMatchExpiry),
		Players: [2]model.PlayerSlot{
			{
				UID:          model.PlayerIDPtr(self.UserID),
				PlayerNumber: 1,
				DisplayName:  orDefault(self.DisplayName, "Player 1"),
				Elo:          self.Elo,
				JoinedAt:     now,
			},
			{
				UID:          model.PlayerIDPtr(candidate.UserID),
				PlayerNumber: 2,
				DisplayName:  orDefault(candidate.DisplayName, "Player 2"),
				Elo:          candidate.Elo,
				JoinedAt:     now,
			},
		},
		HostUID:   self.UserID,
		GameState: model.NewGameState(p.Board, p.Solution, now),
	}
}

// abandon removes the searcher's entry even when the request context is already cancelled
func (s *Service) abandon(ctx context.Context, user model.PlayerID, logger *slog.Logger) {
	if err := s.storage.DeleteQueueEntry(context.WithoutCancel(ctx), user); err != nil {
		logger.Warn("failed to remove queue entry", slog.Any("error", err))
	}
}

// displayName prefers the requested name, then the stored profile name
func (s *Service) displayName(ctx context.Context, user model.PlayerID, requested string) string {
	if requested != "" {
		return requested
	}
	if profile, err := s.storage.GetProfile(ctx, user); err == nil {
		return profile.DisplayName
	}
	return ""
}

func resultFor(match *model.Match, user model.PlayerID) *Result {
	opp := match.Opponent(user)
	if opp == nil {
		return &Result{MatchID: match.MatchID}
	}
	return &Result{
		MatchID:       match.MatchID,
		OpponentFound: !opp.IsAI,
		AIOpponent:    opp.IsAI,
		Opponent: Opponent{
			DisplayName: opp.DisplayName,
			Elo:         opp.Elo,
			IsAI:        opp.IsAI,
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
