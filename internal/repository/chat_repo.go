package repository

import (
	"context"
	"errors"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatSessionRepository provisions chat sessions between matched users.
// At most one session exists per unordered pair, enforced by a unique
// index on the normalized (low, high) id columns.
type ChatSessionRepository struct {
	db *gorm.DB
}

// NewChatSessionRepository creates a new repository bound to the given DB connection.
func NewChatSessionRepository(database *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: database}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *ChatSessionRepository) WithTx(tx *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: tx}
}

// GetOrCreate returns the chat session for the pair, creating it on first
// acceptance. Idempotent by construction: a lost insert race degrades to a
// lookup of the winner's row via the unique pair index, so two concurrent
// acceptances between the same pair can never produce two chats.
func (r *ChatSessionRepository) GetOrCreate(ctx context.Context, userA, userB uint64) (*db.ChatSession, error) {
	low, high := db.NormalizePair(userA, userB)

	session, err := r.find(ctx, low, high)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = &db.ChatSession{
		ID:         uuid.NewString(),
		UserLowID:  low,
		UserHighID: high,
	}
	err = r.db.WithContext(ctx).Create(session).Error
	if err == nil {
		return session, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the insert race; the winner's session is what we return
		return r.find(ctx, low, high)
	}
	return nil, err
}

// ForPair looks up the session for a pair without creating one.
// Returns gorm.ErrRecordNotFound if the pair has never matched.
func (r *ChatSessionRepository) ForPair(ctx context.Context, userA, userB uint64) (*db.ChatSession, error) {
	low, high := db.NormalizePair(userA, userB)
	return r.find(ctx, low, high)
}

func (r *ChatSessionRepository) find(ctx context.Context, low, high uint64) (*db.ChatSession, error) {
	var session db.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}
