package repository

import (
	"context"
	"errors"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"

	"gorm.io/gorm"
)

// MatchRequestRepository provides data access methods for the MatchRequest
// model. It owns the two guarantees the coordinator builds on: the
// duplicate-pending guard at creation, and the compare-and-swap transition
// that picks exactly one winner among racing callers.
type MatchRequestRepository struct {
	db *gorm.DB
}

// NewMatchRequestRepository creates a new repository bound to the given DB connection.
func NewMatchRequestRepository(database *gorm.DB) *MatchRequestRepository {
	return &MatchRequestRepository{db: database}
}

// WithTx returns a repository bound to the given transaction handle.
// Used by the coordinator to compose the CAS with chat provisioning
// inside a single transaction.
func (r *MatchRequestRepository) WithTx(tx *gorm.DB) *MatchRequestRepository {
	return &MatchRequestRepository{db: tx}
}

// Create inserts a new pending request from sender to receiver.
//
// Behavior:
//   - Fails with ErrDuplicatePending if a pending request already exists
//     between the pair, in either direction.
//   - The check and insert run in one transaction so concurrent creates
//     between the same pair cannot both pass the guard.
//
// Example:
//
//	repo.Create(ctx, 1, 2) // user 1 asks user 2 for a language exchange
func (r *MatchRequestRepository) Create(
	ctx context.Context,
	senderID, receiverID uint64,
) (*db.MatchRequest, error) {
	req := db.MatchRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     db.StatusPending,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&db.MatchRequest{}).
			Where("status = ?", db.StatusPending).
			Where(
				"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				senderID, receiverID, receiverID, senderID,
			).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return svcErr.ErrDuplicatePending
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Get loads a request by id. Returns ErrNotFound if absent.
func (r *MatchRequestRepository) Get(ctx context.Context, id uint64) (*db.MatchRequest, error) {
	var req db.MatchRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// TryTransition atomically moves a request from pending to the given
// terminal status. This is the race-safety primitive of the subsystem.
//
// Behavior:
//   - Issues UPDATE ... WHERE id = ? AND status = 'pending'. The status
//     guard in the WHERE clause is the compare-and-swap: exactly one of
//     any number of racing callers sees RowsAffected == 1.
//   - The winner gets the updated row and a nil error.
//   - Losers get the actual row as it now stands plus ErrAlreadyProcessed,
//     so they can still render the decided outcome (including the chatId
//     the winner attached).
//   - An unknown id yields ErrNotFound.
//
// Example:
//
//	req, err := repo.TryTransition(ctx, 7, db.StatusRejected)
func (r *MatchRequestRepository) TryTransition(
	ctx context.Context,
	id uint64,
	toStatus string,
) (*db.MatchRequest, error) {
	res := r.db.WithContext(ctx).
		Model(&db.MatchRequest{}).
		Where("id = ? AND status = ?", id, db.StatusPending).
		Update("status", toStatus)
	if res.Error != nil {
		return nil, res.Error
	}

	// Re-read either way: the winner wants the fresh row, a loser wants
	// the terminal state some other caller produced.
	req, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 1 {
		return req, nil
	}
	return req, svcErr.ErrAlreadyProcessed
}

// AttachChat records the provisioned chat session on an accepted request.
// Called by the coordinator in the same transaction as the winning CAS,
// so accepted-without-chat is never visible outside the transaction.
func (r *MatchRequestRepository) AttachChat(ctx context.Context, id uint64, chatID string) error {
	return r.db.WithContext(ctx).
		Model(&db.MatchRequest{}).
		Where("id = ? AND status = ?", id, db.StatusAccepted).
		Update("chat_id", chatID).Error
}

// ListPendingForReceiver returns all pending requests addressed to a user.
// Used by the bulk clear to enumerate its working set.
func (r *MatchRequestRepository) ListPendingForReceiver(
	ctx context.Context,
	receiverID uint64,
) ([]db.MatchRequest, error) {
	var reqs []db.MatchRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, db.StatusPending).
		Order("id").
		Find(&reqs).Error
	return reqs, err
}
