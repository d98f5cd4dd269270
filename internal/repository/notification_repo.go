package repository

import (
	"context"
	"time"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"
	"github.com/DhawalShankar/vartalang-sub001/internal/utils/pagination"

	"gorm.io/gorm"
)

// NotificationRepository provides data access methods for the Notification
// model. Reads defensively filter out match_request notifications whose
// underlying request has already left pending, so a delayed cleanup delete
// never leaks a stale entry to clients.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository bound to the given DB connection.
func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: tx}
}

// liveFilter keeps only notifications that are still meaningful: anything
// that is not a match_request, plus match_request entries whose underlying
// request is still pending.
const liveFilter = `
	n.type <> 'match_request'
	OR EXISTS (
		SELECT 1 FROM match_requests mr
		WHERE mr.id = n.related_match_id
		  AND mr.status = 'pending'
	)`

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, notif *db.Notification) error {
	return r.db.WithContext(ctx).Create(notif).Error
}

// ListFor returns a page of live notifications addressed to a user.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Stale match_request entries are filtered (see liveFilter).
//   - Cursor-based pagination via pageToken; each call is a fresh read,
//     not a live stream.
func (r *NotificationRepository) ListFor(
	ctx context.Context,
	recipientID uint64,
	pageToken *string,
	limit int,
) ([]db.Notification, *string, error) {
	var notifs []db.Notification

	cursor, err := pagination.Decode(getString(pageToken))
	if err != nil {
		return nil, nil, svcErr.Validation("invalid page token")
	}

	query := r.db.WithContext(ctx).
		Table("notifications n").
		Where("n.recipient_id = ?", recipientID).
		Where(liveFilter).
		Order("n.created_at DESC, n.id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(n.created_at < ? OR (n.created_at = ? AND n.id < ?))",
			ts, ts, cursor.LastID,
		)
	}

	if err := query.Find(&notifs).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(notifs) > limit {
		last := notifs[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:      last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		notifs = notifs[:limit]
	}

	return notifs, nextToken, nil
}

// CountFor returns how many live notifications a user has.
// Used in conjunction with the Redis cache (DB is fallback).
func (r *NotificationRepository) CountFor(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("notifications n").
		Where("n.recipient_id = ?", recipientID).
		Where(liveFilter).
		Count(&count).Error
	return count, err
}

// Dismiss deletes a notification, scoped to its recipient so a user cannot
// dismiss someone else's. Returns ErrNotFound if nothing was deleted.
func (r *NotificationRepository) Dismiss(ctx context.Context, id, recipientID uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&db.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return svcErr.ErrNotFound
	}
	return nil
}

// DeleteForRequest retires the match_request notification that references
// a resolved request. Best-effort cleanup: callers log failures but do not
// block on them (ListFor filters stale entries regardless).
func (r *NotificationRepository) DeleteForRequest(ctx context.Context, requestID uint64) error {
	return r.db.WithContext(ctx).
		Where("type = ? AND related_match_id = ?", db.NotifMatchRequest, requestID).
		Delete(&db.Notification{}).Error
}

// ListPendingMatchRequests returns the match_request notifications for a
// user whose underlying request is still pending. Working set for the bulk
// clear.
func (r *NotificationRepository) ListPendingMatchRequests(
	ctx context.Context,
	recipientID uint64,
) ([]db.Notification, error) {
	var notifs []db.Notification
	err := r.db.WithContext(ctx).
		Table("notifications n").
		Where("n.recipient_id = ? AND n.type = ?", recipientID, db.NotifMatchRequest).
		Where(liveFilter).
		Order("n.id").
		Find(&notifs).Error
	return notifs, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
