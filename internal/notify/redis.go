package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/sudokuduo/internal/model"
)

// RedisNotifier implements Notifier with Redis pub/sub so any server instance can
// wake the request waiting for a player
type RedisNotifier struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisNotifier creates a RedisNotifier on an existing client
func NewRedisNotifier(client *redis.Client, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		logger: logger.With(slog.String("component", "notify-redis")),
	}
}

// Ensure RedisNotifier implements Notifier
var _ Notifier = (*RedisNotifier)(nil)

// channelName returns the pub/sub channel for a player
func channelName(id model.PlayerID) string {
	return fmt.Sprintf("sudokuduo:notify:%s", id)
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan model.MatchID
	once   sync.Once
}

func (s *redisSubscription) C() <-chan model.MatchID {
	return s.ch
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.pubsub.Close()
	})
	return err
}

// Subscribe opens a pub/sub subscription and waits for Redis to confirm it
func (n *RedisNotifier) Subscribe(ctx context.Context, id model.PlayerID) (Subscription, error) {
	pubsub := n.client.Subscribe(ctx, channelName(id))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", id, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     make(chan model.MatchID, subscriberBuffer),
	}
	go func() {
		defer close(sub.ch)
		for msg := range pubsub.Channel() {
			select {
			case sub.ch <- model.MatchID(msg.Payload):
			default:
				n.logger.Warn("notification dropped - subscriber buffer full",
					slog.String("user_id", string(id)),
					slog.String("match_id", msg.Payload))
			}
		}
	}()
	return sub, nil
}

// Publish sends the match id to the player's channel
func (n *RedisNotifier) Publish(ctx context.Context, id model.PlayerID, matchID model.MatchID) error {
	return n.client.Publish(ctx, channelName(id), string(matchID)).Err()
}
