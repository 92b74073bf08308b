package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// Inbox reads the in-app notifications the worker stored for a user.
type Inbox struct {
	repo repository.NotificationRepository
}

func NewInbox(repo repository.NotificationRepository) *Inbox {
	return &Inbox{repo: repo}
}

// List returns the user's notifications, newest first. It never returns
// a nil slice.
func (i *Inbox) List(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	list, err := i.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if list == nil {
		list = []*model.Notification{}
	}
	return list, nil
}
