package messaging

import (
	"context"
)

// ChannelNotifications carries in-app notification events.
const ChannelNotifications = "notifications"

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
