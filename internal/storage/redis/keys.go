package redis

import (
	"fmt"

	"github.com/mcoot/sudokuduo/internal/model"
)

// Key prefix for all match-related data
const keyPrefix = "sudokuduo"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// matchKey returns the Redis key for a Match
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// inviteIndexKey returns the Redis key for the SET of matches holding an invite code
func inviteIndexKey(code string) string {
	return fmt.Sprintf("%s:idx:invite:%s", keyPrefix, code)
}

// playerMatchesIndexKey returns the Redis key for the ZSET of a player's matches scored by creation time
func playerMatchesIndexKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_matches:%s", keyPrefix, id)
}

// matchExpiryIndexKey returns the Redis key for the ZSET of matches scored by expireAt
func matchExpiryIndexKey() string {
	return fmt.Sprintf("%s:idx:match_expiry", keyPrefix)
}

// queueEntryKey returns the Redis key for a QueueEntry
func queueEntryKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:queue:%s", keyPrefix, id)
}

// queueIndexKey returns the Redis key for the ZSET of searching players scored by rating
func queueIndexKey(difficulty model.Difficulty) string {
	return fmt.Sprintf("%s:idx:queue:%s", keyPrefix, difficulty)
}

// queueExpiryIndexKey returns the Redis key for the ZSET of queue entries scored by expireAt
func queueExpiryIndexKey() string {
	return fmt.Sprintf("%s:idx:queue_expiry", keyPrefix)
}

// profileKey returns the Redis key for a Profile
func profileKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, id)
}

// historyKey returns the Redis key for the LIST of a player's history entries (newest first)
func historyKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, id)
}

// leaderboardKey returns the Redis key for the rating ZSET
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
