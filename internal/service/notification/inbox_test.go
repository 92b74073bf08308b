package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
)

func TestInbox_List(t *testing.T) {
	store := memory.NewStore()
	inbox := NewInbox(store.Notifications)
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	list, err := inbox.List(ctx, me)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	base := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	for i, n := range []*model.Notification{
		{ID: uuid.New(), UserID: me, Subject: "older", CreatedAt: base},
		{ID: uuid.New(), UserID: other, Subject: "not mine", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), UserID: me, Subject: "newer", CreatedAt: base.Add(2 * time.Minute)},
	} {
		require.NoError(t, store.Notifications.Create(ctx, n), i)
	}

	list, err = inbox.List(ctx, me)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Subject)
	assert.Equal(t, "older", list[1].Subject)
}
