package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

// NotificationWorker stores in-app alerts published on the notifications
// channel into each recipient's inbox.
type NotificationWorker struct {
	repo    repository.NotificationRepository
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewNotificationWorker(
	repo repository.NotificationRepository,
	broker messaging.Broker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		repo:    repo,
		broker:  broker,
		metrics: m,
		logger:  logger.With().Str("component", "notification_worker").Logger(),
	}
}

// Run blocks until ctx is cancelled or the subscription closes.
func (w *NotificationWorker) Run(ctx context.Context) error {
	w.logger.Info().Str("channel", messaging.ChannelNotifications).Msg("worker started")
	defer w.logger.Info().Msg("worker stopped")
	return messaging.Consume[model.NotificationEvent](ctx, w.broker, messaging.ChannelNotifications, w.logger, w.Handle)
}

func (w *NotificationWorker) Handle(ctx context.Context, evt model.NotificationEvent) error {
	if evt.UserID == uuid.Nil {
		w.failed()
		return fmt.Errorf("notification event %s has no recipient", evt.ID)
	}

	n := &model.Notification{
		ID:        evt.ID,
		UserID:    evt.UserID,
		Subject:   evt.Subject,
		Body:      evt.Body,
		CreatedAt: evt.OccurredAt,
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if err := w.repo.Create(ctx, n); err != nil {
		w.failed()
		return fmt.Errorf("failed to store notification: %w", err)
	}
	if w.metrics != nil {
		w.metrics.EventsProcessed.Inc()
	}
	w.logger.Debug().
		Str("event_id", n.ID.String()).
		Str("user_id", n.UserID.String()).
		Str("kind", evt.Kind).
		Msg("notification stored")
	return nil
}

func (w *NotificationWorker) failed() {
	if w.metrics != nil {
		w.metrics.EventsFailed.Inc()
	}
}
