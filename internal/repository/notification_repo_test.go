package repository_test

import (
	"context"
	"testing"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"
	"github.com/DhawalShankar/vartalang-sub001/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedRequestWithNotification(t *testing.T, database *gorm.DB, senderID, receiverID uint64) *db.MatchRequest {
	t.Helper()
	requests := repository.NewMatchRequestRepository(database)
	notifs := repository.NewNotificationRepository(database)

	req, err := requests.Create(context.Background(), senderID, receiverID)
	require.NoError(t, err)
	require.NoError(t, notifs.Create(context.Background(), &db.Notification{
		Type:           db.NotifMatchRequest,
		RecipientID:    receiverID,
		SenderID:       senderID,
		RelatedMatchID: &req.ID,
	}))
	return req
}

func TestListForFiltersResolvedRequests(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	requests := repository.NewMatchRequestRepository(database)
	notifs := repository.NewNotificationRepository(database)

	live := seedRequestWithNotification(t, database, 1, 9)
	stale := seedRequestWithNotification(t, database, 2, 9)

	// resolve the second request but deliberately skip the cleanup delete:
	// the read path must filter the dangling notification on its own
	_, err := requests.TryTransition(ctx, stale.ID, db.StatusRejected)
	require.NoError(t, err)

	got, next, err := notifs.ListFor(ctx, 9, nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, *got[0].RelatedMatchID)
	assert.Nil(t, next)
}

func TestListForKeepsNonRequestTypes(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	notifs := repository.NewNotificationRepository(database)

	chatID := "chat-42"
	require.NoError(t, notifs.Create(ctx, &db.Notification{
		Type:          db.NotifMatchAccepted,
		RecipientID:   9,
		SenderID:      2,
		RelatedChatID: &chatID,
	}))
	require.NoError(t, notifs.Create(ctx, &db.Notification{
		Type:        db.NotifNewMessage,
		RecipientID: 9,
		SenderID:    2,
	}))

	got, _, err := notifs.ListFor(ctx, 9, nil, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListForPagination(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	notifs := repository.NewNotificationRepository(database)

	for i := 0; i < 5; i++ {
		require.NoError(t, notifs.Create(ctx, &db.Notification{
			Type:        db.NotifNewMessage,
			RecipientID: 9,
			SenderID:    2,
		}))
	}

	first, next, err := notifs.ListFor(ctx, 9, nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, next)

	rest, next, err := notifs.ListFor(ctx, 9, next, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Nil(t, next)

	// no overlap between pages
	seen := map[uint64]bool{}
	for _, n := range append(first, rest...) {
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestDismissScopedToRecipient(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	notifs := repository.NewNotificationRepository(database)

	notif := &db.Notification{Type: db.NotifNewMessage, RecipientID: 9, SenderID: 2}
	require.NoError(t, notifs.Create(ctx, notif))

	// someone else cannot dismiss it
	err := notifs.Dismiss(ctx, notif.ID, 777)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	require.NoError(t, notifs.Dismiss(ctx, notif.ID, 9))

	// gone, and a second dismiss reports not found
	err = notifs.Dismiss(ctx, notif.ID, 9)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestDeleteForRequest(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	notifs := repository.NewNotificationRepository(database)

	req := seedRequestWithNotification(t, database, 1, 9)
	require.NoError(t, notifs.DeleteForRequest(ctx, req.ID))

	count, err := notifs.CountFor(ctx, 9)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountForMatchesListFilter(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	requests := repository.NewMatchRequestRepository(database)
	notifs := repository.NewNotificationRepository(database)

	seedRequestWithNotification(t, database, 1, 9)
	stale := seedRequestWithNotification(t, database, 2, 9)
	_, err := requests.TryTransition(ctx, stale.ID, db.StatusAccepted)
	require.NoError(t, err)

	count, err := notifs.CountFor(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
