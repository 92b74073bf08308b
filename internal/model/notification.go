package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app inbox entry for a user.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	Read      bool      `json:"read" db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NotificationEvent is published on the broker for admins who want in-app
// alerts. The worker turns each one into a Notification.
type NotificationEvent struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DeliveryStatus is the outcome of one outbound message.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryResult reports what happened to a single outbound message.
type DeliveryResult struct {
	Recipient string         `json:"recipient"`
	Kind      string         `json:"kind"`
	Channel   string         `json:"channel"`
	Status    DeliveryStatus `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

func (r DeliveryResult) Failed() bool { return r.Status == DeliveryFailed }
