package storage

import (
	"context"
	"time"

	"github.com/mcoot/sudokuduo/internal/model"
)

// MatchUpdateFunc mutates a freshly loaded match. Returning an error aborts the write.
type MatchUpdateFunc func(m *model.Match) error

// SettleFunc applies a match outcome. It receives the freshly loaded match and the
// stored profiles of its human players (absent if the player has none yet), may
// mutate both and add missing profiles, and returns one history entry per player.
// Returning an error aborts the write.
type SettleFunc func(m *model.Match, profiles map[model.PlayerID]*model.Profile) (map[model.PlayerID]*model.HistoryEntry, error)

// Storage defines the interface for data persistence.
// Multi-record writes (queue claims, match updates, settlement) are atomic.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Match operations
	CreateMatch(ctx context.Context, match *model.Match) error
	// CreateInviteMatch creates the match unless a live match already holds its invite code,
	// in which case it fails with model.ErrInviteCodeTaken and writes nothing.
	CreateInviteMatch(ctx context.Context, match *model.Match, now time.Time) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	// UpdateMatch applies fn with compare-and-set semantics and returns the stored result
	UpdateMatch(ctx context.Context, id model.MatchID, fn MatchUpdateFunc) (*model.Match, error)
	DeleteMatch(ctx context.Context, id model.MatchID) error
	// FindLobbyByInviteCode returns the newest unexpired lobby holding the code
	FindLobbyByInviteCode(ctx context.Context, code string, now time.Time) (*model.Match, error)
	// InviteCodeInUse reports whether a lobby or active match holds the code
	InviteCodeInUse(ctx context.Context, code string, now time.Time) (bool, error)
	// LatestMatchForPlayer returns the newest match created at or after since containing the player
	LatestMatchForPlayer(ctx context.Context, id model.PlayerID, since time.Time) (*model.Match, error)
	// DeleteExpiredMatches removes up to limit matches whose expireAt has passed
	DeleteExpiredMatches(ctx context.Context, now time.Time, limit int) (int, error)

	// Matchmaking queue operations
	SaveQueueEntry(ctx context.Context, entry *model.QueueEntry) error
	GetQueueEntry(ctx context.Context, id model.PlayerID) (*model.QueueEntry, error)
	DeleteQueueEntry(ctx context.Context, id model.PlayerID) error
	// FindQueueCandidates returns matching entries ordered by rating, then user id
	FindQueueCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.QueueEntry, error)
	// ClaimQueueEntries atomically deletes every listed entry and creates the match.
	// Fails with model.ErrQueueEntryNotFound, writing nothing, if any entry is missing.
	ClaimQueueEntries(ctx context.Context, ids []model.PlayerID, match *model.Match) error
	// DeleteExpiredQueueEntries removes up to limit entries whose expireAt has passed
	DeleteExpiredQueueEntries(ctx context.Context, now time.Time, limit int) (int, error)

	// Profile operations
	SaveProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error)
	GetHistory(ctx context.Context, id model.PlayerID, limit int) ([]*model.HistoryEntry, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	// SettleMatch atomically writes the match, the profiles and the history entries produced by fn
	SettleMatch(ctx context.Context, id model.MatchID, fn SettleFunc) (*model.Match, error)
}
