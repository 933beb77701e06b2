package entities

import "time"

// AuthToken is the bearer credential of the REST API. Only the SHA-256 of
// the issued token is stored; each user holds at most one.
type AuthToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenHash  string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Prefix     string     `gorm:"size:8" json:"prefix"` // First chars of the raw token, for display
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsExpired reports whether the token has an expiry in the past.
func (t *AuthToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
