// Package tokens stores the hashed REST API tokens, one per user.
package tokens

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

var ErrTokenNotFound = errors.New("token not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Replace drops any token the user holds and stores the new one.
func (r *Repository) Replace(token *entities.AuthToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&entities.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

// GetByHash retrieves a token with its user preloaded.
func (r *Repository) GetByHash(hash string) (*entities.AuthToken, error) {
	var token entities.AuthToken
	err := r.db.Preload("User").Where("token_hash = ?", hash).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// GetByUserID retrieves the token held by a user.
func (r *Repository) GetByUserID(userID uint) (*entities.AuthToken, error) {
	var token entities.AuthToken
	err := r.db.Where("user_id = ?", userID).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Touch updates the last-used timestamp.
func (r *Repository) Touch(id uint, at time.Time) error {
	return r.db.Model(&entities.AuthToken{}).Where("id = ?", id).UpdateColumn("last_used_at", at).Error
}

// DeleteByUserID removes the user's token. Deleting a missing token returns
// ErrTokenNotFound.
func (r *Repository) DeleteByUserID(userID uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.AuthToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// DeleteExpired removes tokens whose expiry is before now and returns how
// many were deleted.
func (r *Repository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at < ?", now).Delete(&entities.AuthToken{})
	return result.RowsAffected, result.Error
}
