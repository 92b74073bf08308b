package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Handler processes one decoded message.
type Handler[T any] func(ctx context.Context, msg T) error

// Consume subscribes to channel and feeds each JSON payload to handle
// until ctx is done or the subscription closes. Undecodable payloads and
// handler errors are logged and skipped.
func Consume[T any](ctx context.Context, broker Broker, channel string, logger zerolog.Logger, handle Handler[T]) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var msg T
			if err := json.Unmarshal(raw, &msg); err != nil {
				logger.Warn().Err(err).Str("channel", channel).Msg("dropping malformed message")
				continue
			}
			if err := handle(ctx, msg); err != nil {
				logger.Error().Err(err).Str("channel", channel).Msg("message handler failed")
			}
		}
	}
}
