package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// queueScanPage is how many queue index members are read per round trip
const queueScanPage = 25

// Storage is a Redis-backed implementation of the storage interface.
// Multi-key writes use WATCH/MULTI/EXEC and retry on contention.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client returns the underlying client so other components can share the connection pool
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// transact runs fn under WATCH on keys, retrying when another client wins the race
func (s *Storage) transact(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return model.ErrMatchConflict
}

func unixMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func millisBound(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}
	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, s.client, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0) // No TTL
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getJSON(ctx, s.client, registeredPlayerKey(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	if err := s.getJSON(ctx, s.client, sessionKey(token), &session, model.ErrSessionNotFound); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// Match operations

// writeMatch queues the match record and its index entries on pipe
func (s *Storage) writeMatch(ctx context.Context, pipe redis.Pipeliner, m *model.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	pipe.Set(ctx, matchKey(m.MatchID), data, s.cfg.MatchTTL)
	pipe.ZAdd(ctx, matchExpiryIndexKey(), redis.Z{Score: unixMillis(m.ExpireAt), Member: string(m.MatchID)})
	if m.InviteCode != "" {
		pipe.SAdd(ctx, inviteIndexKey(m.InviteCode), string(m.MatchID))
		pipe.Expire(ctx, inviteIndexKey(m.InviteCode), s.cfg.MatchTTL)
	}
	for _, uid := range m.HumanPlayers() {
		pipe.ZAdd(ctx, playerMatchesIndexKey(uid), redis.Z{Score: unixMillis(m.CreatedAt), Member: string(m.MatchID)})
		pipe.Expire(ctx, playerMatchesIndexKey(uid), s.cfg.MatchTTL)
	}
	return nil
}

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	pipe := s.client.TxPipeline()
	if err := s.writeMatch(ctx, pipe, match); err != nil {
		return err
	}
	_, err := pipe.Exec(ctx)
	return err
}

// CreateInviteMatch watches the code's index so concurrent creators with the same code serialize
func (s *Storage) CreateInviteMatch(ctx context.Context, match *model.Match, now time.Time) error {
	indexKey := inviteIndexKey(match.InviteCode)
	return s.transact(ctx, func(tx *redis.Tx) error {
		ids, err := tx.SMembers(ctx, indexKey).Result()
		if err != nil {
			return err
		}
		for _, id := range ids {
			var existing model.Match
			err := s.getJSON(ctx, tx, matchKey(model.MatchID(id)), &existing, model.ErrMatchNotFound)
			if errors.Is(err, model.ErrMatchNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if existing.IsLive(now) {
				return model.ErrInviteCodeTaken
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.writeMatch(ctx, pipe, match)
		})
		return err
	}, indexKey)
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	var match model.Match
	if err := s.getJSON(ctx, s.client, matchKey(id), &match, model.ErrMatchNotFound); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) UpdateMatch(ctx context.Context, id model.MatchID, fn storage.MatchUpdateFunc) (*model.Match, error) {
	var updated *model.Match
	err := s.transact(ctx, func(tx *redis.Tx) error {
		var match model.Match
		if err := s.getJSON(ctx, tx, matchKey(id), &match, model.ErrMatchNotFound); err != nil {
			return err
		}
		if err := fn(&match); err != nil {
			return err
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.writeMatch(ctx, pipe, &match)
		})
		if err != nil {
			return err
		}
		updated = &match
		return nil
	}, matchKey(id))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	match, err := s.GetMatch(ctx, id)
	if err != nil && !errors.Is(err, model.ErrMatchNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, matchKey(id))
	pipe.ZRem(ctx, matchExpiryIndexKey(), string(id))
	if match != nil {
		if match.InviteCode != "" {
			pipe.SRem(ctx, inviteIndexKey(match.InviteCode), string(id))
		}
		for _, uid := range match.HumanPlayers() {
			pipe.ZRem(ctx, playerMatchesIndexKey(uid), string(id))
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

// matchesForInviteCode loads every stored match indexed under code, pruning stale index members
func (s *Storage) matchesForInviteCode(ctx context.Context, code string) ([]*model.Match, error) {
	ids, err := s.client.SMembers(ctx, inviteIndexKey(code)).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]*model.Match, 0, len(ids))
	for _, id := range ids {
		match, err := s.GetMatch(ctx, model.MatchID(id))
		if errors.Is(err, model.ErrMatchNotFound) {
			s.client.SRem(ctx, inviteIndexKey(code), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *Storage) FindLobbyByInviteCode(ctx context.Context, code string, now time.Time) (*model.Match, error) {
	matches, err := s.matchesForInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var found *model.Match
	for _, m := range matches {
		if m.Status != model.MatchStatusLobby || m.IsExpired(now) {
			continue
		}
		if found == nil || m.CreatedAt.After(found.CreatedAt) {
			found = m
		}
	}
	if found == nil {
		return nil, model.ErrInviteNotFound
	}
	return found, nil
}

func (s *Storage) InviteCodeInUse(ctx context.Context, code string, now time.Time) (bool, error) {
	matches, err := s.matchesForInviteCode(ctx, code)
	if err != nil {
		return false, err
	}
	for _, m := range matches {
		if m.IsLive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) LatestMatchForPlayer(ctx context.Context, id model.PlayerID, since time.Time) (*model.Match, error) {
	ids, err := s.client.ZRevRangeByScore(ctx, playerMatchesIndexKey(id), &redis.ZRangeBy{
		Min: millisBound(since),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	for _, matchID := range ids {
		match, err := s.GetMatch(ctx, model.MatchID(matchID))
		if errors.Is(err, model.ErrMatchNotFound) {
			s.client.ZRem(ctx, playerMatchesIndexKey(id), matchID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if match.HasPlayer(id) {
			return match, nil
		}
	}
	return nil, model.ErrMatchNotFound
}

func (s *Storage) DeleteExpiredMatches(ctx context.Context, now time.Time, limit int) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, matchExpiryIndexKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   millisBound(now),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.DeleteMatch(ctx, model.MatchID(id)); err != nil {
			return 0, fmt.Errorf("deleting match %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// Matchmaking queue operations

func (s *Storage) SaveQueueEntry(ctx context.Context, entry *model.QueueEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	s.removeFromQueueIndexes(ctx, pipe, entry.UserID)
	pipe.Set(ctx, queueEntryKey(entry.UserID), data, s.cfg.QueueEntryTTL)
	pipe.ZAdd(ctx, queueIndexKey(entry.Difficulty), redis.Z{Score: float64(entry.Elo), Member: string(entry.UserID)})
	pipe.ZAdd(ctx, queueExpiryIndexKey(), redis.Z{Score: unixMillis(entry.ExpireAt), Member: string(entry.UserID)})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetQueueEntry(ctx context.Context, id model.PlayerID) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	if err := s.getJSON(ctx, s.client, queueEntryKey(id), &entry, model.ErrQueueEntryNotFound); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Storage) DeleteQueueEntry(ctx context.Context, id model.PlayerID) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, queueEntryKey(id))
	s.removeFromQueueIndexes(ctx, pipe, id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) removeFromQueueIndexes(ctx context.Context, pipe redis.Pipeliner, id model.PlayerID) {
	for _, d := range model.ValidDifficulties() {
		pipe.ZRem(ctx, queueIndexKey(d), string(id))
	}
	pipe.ZRem(ctx, queueExpiryIndexKey(), string(id))
}

func (s *Storage) FindQueueCandidates(ctx context.Context, q model.CandidateQuery) ([]*model.QueueEntry, error) {
	indexKey := queueIndexKey(q.Difficulty)
	var candidates []*model.QueueEntry

	for offset := int64(0); ; offset += queueScanPage {
		ids, err := s.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
			Min:    strconv.Itoa(q.EloMin),
			Max:    strconv.Itoa(q.EloMax),
			Offset: offset,
			Count:  queueScanPage,
		}).Result()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return candidates, nil
		}

		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = queueEntryKey(model.PlayerID(id))
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}

		for i, val := range values {
			if val == nil {
				continue // Entry TTL lapsed; the sweeper prunes the index
			}
			var entry model.QueueEntry
			if err := json.Unmarshal([]byte(val.(string)), &entry); err != nil {
				continue // Skip invalid data
			}
			if entry.UserID != model.PlayerID(ids[i]) || !q.Matches(&entry) {
				continue
			}
			candidates = append(candidates, &entry)
			if q.Limit > 0 && len(candidates) >= q.Limit {
				return candidates, nil
			}
		}

		if len(ids) < queueScanPage {
			return candidates, nil
		}
	}
}

func (s *Storage) ClaimQueueEntries(ctx context.Context, ids []model.PlayerID, match *model.Match) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = queueEntryKey(id)
	}

	return s.transact(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, keys...).Result()
		if err != nil {
			return err
		}
		if n != int64(len(keys)) {
			return model.ErrQueueEntryNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range ids {
				pipe.Del(ctx, queueEntryKey(id))
				s.removeFromQueueIndexes(ctx, pipe, id)
			}
			return s.writeMatch(ctx, pipe, match)
		})
		return err
	}, keys...)
}

func (s *Storage) DeleteExpiredQueueEntries(ctx context.Context, now time.Time, limit int) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, queueExpiryIndexKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   millisBound(now),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := s.DeleteQueueEntry(ctx, model.PlayerID(id)); err != nil {
			return 0, fmt.Errorf("deleting queue entry %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// Profile operations

func (s *Storage) writeProfile(ctx context.Context, pipe redis.Pipeliner, p *model.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	pipe.Set(ctx, profileKey(p.UID), data, 0) // No TTL
	pipe.ZAdd(ctx, leaderboardKey(), redis.Z{Score: float64(p.CurrentElo), Member: string(p.UID)})
	return nil
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	pipe := s.client.TxPipeline()
	if err := s.writeProfile(ctx, pipe, profile); err != nil {
		return err
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	var profile model.Profile
	if err := s.getJSON(ctx, s.client, profileKey(id), &profile, model.ErrProfileNotFound); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) GetHistory(ctx context.Context, id model.PlayerID, limit int) ([]*model.HistoryEntry, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}
	values, err := s.client.LRange(ctx, historyKey(id), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.HistoryEntry, 0, len(values))
	for _, val := range values {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			continue // Skip invalid data
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (s *Storage) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	stop := int64(limit) - 1
	if limit <= 0 {
		stop = -1
	}
	ids, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.LeaderboardEntry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(model.PlayerID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.LeaderboardEntry, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var p model.Profile
		if err := json.Unmarshal([]byte(val.(string)), &p); err != nil {
			continue // Skip invalid data
		}
		entries = append(entries, &model.LeaderboardEntry{
			Position:    len(entries) + 1,
			UID:         p.UID,
			DisplayName: p.DisplayName,
			Elo:         p.CurrentElo,
			Rank:        p.CurrentRank,
		})
	}
	return entries, nil
}

func (s *Storage) SettleMatch(ctx context.Context, id model.MatchID, fn storage.SettleFunc) (*model.Match, error) {
	// Participants never change once a match exists, so the watched profile keys are stable
	current, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	humans := current.HumanPlayers()
	keys := []string{matchKey(id)}
	for _, uid := range humans {
		keys = append(keys, profileKey(uid))
	}

	var settled *model.Match
	err = s.transact(ctx, func(tx *redis.Tx) error {
		var match model.Match
		if err := s.getJSON(ctx, tx, matchKey(id), &match, model.ErrMatchNotFound); err != nil {
			return err
		}

		profiles := make(map[model.PlayerID]*model.Profile)
		for _, uid := range humans {
			var p model.Profile
			err := s.getJSON(ctx, tx, profileKey(uid), &p, model.ErrProfileNotFound)
			if errors.Is(err, model.ErrProfileNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			profiles[uid] = &p
		}

		history, err := fn(&match, profiles)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if err := s.writeMatch(ctx, pipe, &match); err != nil {
				return err
			}
			for _, p := range profiles {
				if err := s.writeProfile(ctx, pipe, p); err != nil {
					return err
				}
			}
			for uid, entry := range history {
				data, err := json.Marshal(entry)
				if err != nil {
					return err
				}
				pipe.LPush(ctx, historyKey(uid), data)
			}
			return nil
		})
		if err != nil {
			return err
		}
		settled = &match
		return nil
	}, keys...)
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// getJSON reads key and decodes it into dst, mapping a missing key to notFound
func (s *Storage) getJSON(ctx context.Context, c getter, key string, dst any, notFound error) error {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dst)
}
