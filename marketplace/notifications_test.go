package marketplace_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayx/marketplace"
	"wayx/models"
)

func TestNotify(t *testing.T) {
	m, _ := setupTest(t)
	user := uuid.New()

	t.Run("defaults to info and unread", func(t *testing.T) {
		notification, err := m.Notify(context.Background(), user, marketplace.NotificationInput{
			Title:   "Shipment update",
			Message: "carrier assigned",
		})
		require.NoError(t, err)
		assert.Equal(t, models.NotificationInfo, notification.Type)
		assert.False(t, notification.Read)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := m.Notify(context.Background(), uuid.Nil, marketplace.NotificationInput{Title: "x"})
		assert.ErrorIs(t, err, marketplace.ErrValidation)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := m.Notify(context.Background(), user, marketplace.NotificationInput{Title: "  "})
		assert.ErrorIs(t, err, marketplace.ErrValidation)
	})
}

func TestListNotifications(t *testing.T) {
	m, _ := setupTest(t)
	user, other := uuid.New(), uuid.New()

	first, err := m.Notify(context.Background(), user, marketplace.NotificationInput{Title: "first"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := m.Notify(context.Background(), user, marketplace.NotificationInput{Title: "second"})
	require.NoError(t, err)
	_, err = m.Notify(context.Background(), other, marketplace.NotificationInput{Title: "someone else"})
	require.NoError(t, err)

	notifications, err := m.ListNotifications(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, second.ID, notifications[0].ID)
	assert.Equal(t, first.ID, notifications[1].ID)
}

func TestMarkNotificationRead(t *testing.T) {
	m, _ := setupTest(t)
	user, stranger := uuid.New(), uuid.New()
	notification, err := m.Notify(context.Background(), user, marketplace.NotificationInput{Title: "bid accepted"})
	require.NoError(t, err)

	t.Run("only the owner can mark it", func(t *testing.T) {
		err := m.MarkNotificationRead(context.Background(), stranger, notification.ID)
		assert.ErrorIs(t, err, marketplace.ErrNotificationNotFound)
	})

	t.Run("owner marks it read", func(t *testing.T) {
		require.NoError(t, m.MarkNotificationRead(context.Background(), user, notification.ID))
		notifications, err := m.ListNotifications(context.Background(), user)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.True(t, notifications[0].Read)
	})
}

func TestMarkAllNotificationsRead(t *testing.T) {
	m, _ := setupTest(t)
	user := uuid.New()
	for _, title := range []string{"a", "b", "c"} {
		_, err := m.Notify(context.Background(), user, marketplace.NotificationInput{Title: title})
		require.NoError(t, err)
	}

	require.NoError(t, m.MarkAllNotificationsRead(context.Background(), user))

	notifications, err := m.ListNotifications(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	for _, notification := range notifications {
		assert.True(t, notification.Read)
	}

	// 沒有未讀通知時也不報錯
	require.NoError(t, m.MarkAllNotificationsRead(context.Background(), user))
}
