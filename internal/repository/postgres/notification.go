package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	// Redelivered events share an id and are stored once.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		n.ID, n.UserID, n.Subject, n.Body, n.Read, n.CreatedAt)
	if err != nil {
		return wrapErr("create notification", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	var out []*model.Notification
	if err := r.db.SelectContext(ctx, &out, `
		SELECT id, user_id, subject, body, read, created_at FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC`, userID); err != nil {
		return nil, wrapErr("list notifications", err)
	}
	return out, nil
}
