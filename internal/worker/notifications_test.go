package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

func TestNotificationWorker_Handle(t *testing.T) {
	store := memory.NewStore()
	m := metrics.New("test")
	w := NewNotificationWorker(store.Notifications, messaging.NewMemoryBroker(), m, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	err := w.Handle(ctx, model.NotificationEvent{
		UserID:  userID,
		Kind:    "new_appointment",
		Subject: "New appointment",
		Body:    "Jane booked Dr. Mwangi",
	})
	require.NoError(t, err)

	inbox, err := store.Notifications.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "New appointment", inbox[0].Subject)
	assert.False(t, inbox[0].Read)
	assert.NotEqual(t, uuid.Nil, inbox[0].ID)
	assert.False(t, inbox[0].CreatedAt.IsZero())

	err = w.Handle(ctx, model.NotificationEvent{Subject: "orphan"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFailed))
}

func TestNotificationWorker_Run(t *testing.T) {
	store := memory.NewStore()
	broker := messaging.NewMemoryBroker()
	w := NewNotificationWorker(store.Notifications, broker, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	evt := model.NotificationEvent{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Kind:       "new_contact",
		Subject:    "New contact message",
		OccurredAt: time.Now().UTC(),
	}
	// Publishing is repeated until the subscription is live; the event id
	// keeps the inbox entry unique.
	require.Eventually(t, func() bool {
		require.NoError(t, broker.Publish(ctx, messaging.ChannelNotifications, evt))
		inbox, err := store.Notifications.ListByUser(ctx, evt.UserID)
		return err == nil && len(inbox) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
