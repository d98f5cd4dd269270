package repository

import (
	"context"
	"errors"

	"github.com/DhawalShankar/vartalang-sub001/internal/db"
	svcErr "github.com/DhawalShankar/vartalang-sub001/internal/errors"

	"gorm.io/gorm"
)

// UserRepository provides read access to user profiles.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Get loads a user by id. Returns ErrNotFound if absent.
func (r *UserRepository) Get(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail loads a user by email for login. Returns ErrNotFound if absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
