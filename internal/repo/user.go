package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/models"
)

// CreateUser inserts u unless the username is taken. FirstOrCreate catches
// an existing record up front; a concurrent registration that slips past
// the check hits the unique constraint instead, so the race loser still
// gets ErrDuplicateUser.
func (r *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("username = ?", u.Username).FirstOrCreate(u)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDuplicateUser
	}
	return nil
}

func (r *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
