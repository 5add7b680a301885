package providers

import (
	"context"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PredictionEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PredictionEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelPredictionPrefix is the prefix for per-user prediction channels
const EventChannelPredictionPrefix = "predictions:"

// PredictionChannel returns the channel carrying a user's prediction events
func PredictionChannel(userID string) string {
	return EventChannelPredictionPrefix + userID
}
