package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	sessions          map[string]*model.Session
	matches           map[model.MatchID]*model.Match
	queue             map[model.PlayerID]*model.QueueEntry
	profiles          map[model.PlayerID]*model.Profile
	history           map[model.PlayerID][]*model.HistoryEntry
}

// New creates a new in-memory storage instance.
// Queue entries past their expireAt on clk read as missing, as they do once a Redis key TTL lapses.
func New(clk clock.Clock) *Storage {
	return &Storage{
		clock:             clk,
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		sessions:          make(map[string]*model.Session),
		matches:           make(map[model.MatchID]*model.Match),
		queue:             make(map[model.PlayerID]*model.QueueEntry),
		profiles:          make(map[model.PlayerID]*model.Profile),
		history:           make(map[model.PlayerID][]*model.HistoryEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *rp
	s.registeredPlayers[rp.PlayerID] = &r
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	r := *rp
	return &r, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	playerID, ok := s.usernameIndex[username]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetRegisteredPlayer(ctx, playerID)
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := *session
	s.sessions[session.Token] = &sess
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	sess := *session
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Match operations

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.MatchID] = match.Clone()
	return nil
}

func (s *Storage) CreateInviteMatch(ctx context.Context, match *model.Match, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.InviteCode == match.InviteCode && m.IsLive(now) {
			return model.ErrInviteCodeTaken
		}
	}
	s.matches[match.MatchID] = match.Clone()
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return match.Clone(), nil
}

func (s *Storage) UpdateMatch(ctx context.Context, id model.MatchID, fn storage.MatchUpdateFunc) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.matches[id] = working.Clone()
	return working, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, id)
	return nil
}

func (s *Storage) FindLobbyByInviteCode(ctx context.Context, code string, now time.Time) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *model.Match
	for _, m := range s.matches {
		if m.InviteCode != code || m.Status != model.MatchStatusLobby || m.IsExpired(now) {
			continue
		}
		if found == nil || m.CreatedAt.After(found.CreatedAt) {
			found = m
		}
	}
	if found == nil {
		return nil, model.ErrInviteNotFound
	}
	return found.Clone(), nil
}

func (s *Storage) InviteCodeInUse(ctx context.Context, code string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.matches {
		if m.InviteCode == code && m.IsLive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) LatestMatchForPlayer(ctx context.Context, id model.PlayerID, since time.Time) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *model.Match
	for _, m := range s.matches {
		if !m.HasPlayer(id) || m.CreatedAt.Before(since) {
			continue
		}
		if found == nil || m.CreatedAt.After(found.CreatedAt) {
			found = m
		}
	}
	if found == nil {
		return nil, model.ErrMatchNotFound
	}
	return found.Clone(), nil
}

func (s *Storage) DeleteExpiredMatches(ctx context.Context, now time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, m := range s.matches {
		if deleted >= limit {
			break
		}
		if !now.Before(m.ExpireAt) {
			delete(s.matches, id)
			deleted++
		}
	}
	return deleted, nil
}

// Matchmaking queue operations

func (s *Storage) SaveQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	s.queue[entry.UserID] = &e
	return nil
}

func (s *Storage) GetQueueEntry(ctx context.Context, id model.PlayerID) (*model.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.liveQueueEntry(id)
	if !ok {
		return nil, model.ErrQueueEntryNotFound
	}
	e := *entry
	return &e, nil
}

// liveQueueEntry must be called with the lock held
func (s *Storage) liveQueueEntry(id model.PlayerID) (*model.QueueEntry, bool) {
	entry, ok := s.queue[id]
	if !ok || entry.IsExpired(s.clock.Now()) {
		return nil, false
	}
	return entry, true
}

func (s *Storage) DeleteQueueEntry(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queue, id)
	return nil
}

func (s *Storage) FindQueueCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.QueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []*model.QueueEntry
	for _, entry := range s.queue {
		if q.Matches(entry) {
			e := *entry
			candidates = append(candidates, &e)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Elo != candidates[j].Elo {
			return candidates[i].Elo < candidates[j].Elo
		}
		return candidates[i].UserID < candidates[j].UserID
	})
	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	return candidates, nil
}

func (s *Storage) ClaimQueueEntries(ctx context.Context, ids []model.PlayerID, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.liveQueueEntry(id); !ok {
			return model.ErrQueueEntryNotFound
		}
	}
	for _, id := range ids {
		delete(s.queue, id)
	}
	s.matches[match.MatchID] = match.Clone()
	return nil
}

func (s *Storage) DeleteExpiredQueueEntries(ctx context.Context, now time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, entry := range s.queue {
		if deleted >= limit {
			break
		}
		if entry.IsExpired(now) {
			delete(s.queue, id)
			deleted++
		}
	}
	return deleted, nil
}

// Profile operations

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	s.profiles[profile.UID] = &p
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	p := *profile
	return &p, nil
}

func (s *Storage) GetHistory(ctx context.Context, id model.PlayerID, limit int) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[id]
	result := make([]*model.HistoryEntry, 0, len(entries))
	// Newest first
	for i := len(entries) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		e := *entries[i]
		result = append(result, &e)
	}
	return result, nil
}

func (s *Storage) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]*model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].CurrentElo != profiles[j].CurrentElo {
			return profiles[i].CurrentElo > profiles[j].CurrentElo
		}
		return profiles[i].UID > profiles[j].UID
	})

	entries := make([]*model.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		if limit > 0 && i >= limit {
			break
		}
		entries = append(entries, &model.LeaderboardEntry{
			Position:    i + 1,
			UID:         p.UID,
			DisplayName: p.DisplayName,
			Elo:         p.CurrentElo,
			Rank:        p.CurrentRank,
		})
	}
	return entries, nil
}

func (s *Storage) SettleMatch(ctx context.Context, id model.MatchID, fn storage.SettleFunc) (*model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}

	working := stored.Clone()
	profiles := make(map[model.PlayerID]*model.Profile)
	for _, uid := range working.HumanPlayers() {
		if p, ok := s.profiles[uid]; ok {
			cp := *p
			profiles[uid] = &cp
		}
	}

	history, err := fn(working, profiles)
	if err != nil {
		return nil, err
	}

	s.matches[id] = working.Clone()
	for uid, p := range profiles {
		cp := *p
		s.profiles[uid] = &cp
	}
	for uid, entry := range history {
		e := *entry
		s.history[uid] = append(s.history[uid], &e)
	}
	return working, nil
}
