package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for different entity types.
	// Record TTLs only reclaim space; logical expiry is read from each record.
	GuestPlayerTTL time.Duration
	SessionTTL     time.Duration
	MatchTTL       time.Duration
	QueueEntryTTL  time.Duration

	// MaxTxRetries bounds optimistic transaction retries on contention
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		GuestPlayerTTL: 30 * 24 * time.Hour,
		SessionTTL:     24 * time.Hour,
		MatchTTL:       31 * 24 * time.Hour,
		QueueEntryTTL:  120 * time.Second,
		MaxTxRetries:   20,
	}
}
