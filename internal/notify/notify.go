// Package notify delivers match-found signals to a specific player's pending request.
package notify

import (
	"context"

	"github.com/mcoot/sudokuduo/internal/model"
)

// Subscription receives match ids published to one player
type Subscription interface {
	// C yields published match ids. It is closed when the subscription closes.
	C() <-chan model.MatchID
	Close() error
}

// Notifier is a pub/sub channel keyed by player id.
// Messages published while nobody is subscribed are dropped.
type Notifier interface {
	// Subscribe starts listening for the player. Delivery is guaranteed for
	// publishes that happen after Subscribe returns.
	Subscribe(ctx context.Context, id model.PlayerID) (Subscription, error)
	Publish(ctx context.Context, id model.PlayerID, matchID model.MatchID) error
}
