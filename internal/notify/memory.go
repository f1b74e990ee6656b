package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/sudokuduo/internal/model"
)

// subscriberBuffer is how many undelivered match ids a subscriber holds before drops
const subscriberBuffer = 4

// Hub is an in-process Notifier for single-instance deployments and tests
type Hub struct {
	mu          sync.RWMutex
	subscribers map[model.PlayerID]map[*memorySubscription]bool
	logger      *slog.Logger
}

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[model.PlayerID]map[*memorySubscription]bool),
		logger:      logger.With(slog.String("component", "notify-hub")),
	}
}

// Ensure Hub implements Notifier
var _ Notifier = (*Hub)(nil)

type memorySubscription struct {
	hub    *Hub
	id     model.PlayerID
	ch     chan model.MatchID
	closed bool
}

func (s *memorySubscription) C() <-chan model.MatchID {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.hub.unregister(s)
	return nil
}

// Subscribe registers a buffered listener for the player
func (h *Hub) Subscribe(ctx context.Context, id model.PlayerID) (Subscription, error) {
	sub := &memorySubscription{
		hub: h,
		id:  id,
		ch:  make(chan model.MatchID, subscriberBuffer),
	}

	h.mu.Lock()
	if h.subscribers[id] == nil {
		h.subscribers[id] = make(map[*memorySubscription]bool)
	}
	h.subscribers[id][sub] = true
	count := len(h.subscribers[id])
	h.mu.Unlock()

	h.logger.Debug("subscriber registered",
		slog.String("user_id", string(id)),
		slog.Int("total_subscribers", count))
	return sub, nil
}

func (h *Hub) unregister(sub *memorySubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	delete(h.subscribers[sub.id], sub)
	if len(h.subscribers[sub.id]) == 0 {
		delete(h.subscribers, sub.id)
	}
	close(sub.ch)
}

// Publish delivers the match id to every current subscriber of the player
func (h *Hub) Publish(ctx context.Context, id model.PlayerID, matchID model.MatchID) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[id] {
		select {
		case sub.ch <- matchID:
		default:
			h.logger.Warn("notification dropped - subscriber buffer full",
				slog.String("user_id", string(id)),
				slog.String("match_id", string(matchID)))
		}
	}
	return nil
}

// SubscriberCount returns the number of listeners for a player
func (h *Hub) SubscriberCount(id model.PlayerID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[id])
}
