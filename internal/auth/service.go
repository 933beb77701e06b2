package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/tokens"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

var (
	ErrUserNotFound       = users.ErrUserNotFound
	ErrUserExists         = users.ErrDuplicateEmail
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountLocked      = errors.New("too many failed login attempts")
)

// Service handles registration, credential checks and API tokens.
type Service struct {
	db      *gorm.DB
	config  config.Auth
	limiter *RateLimiter
	now     func() time.Time
}

// NewService creates a new authentication service. limiter may be nil to
// disable login throttling.
func NewService(db *gorm.DB, cfg config.Auth, limiter *RateLimiter) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		limiter: limiter,
		now:     time.Now,
	}
}

// Register hashes the password and stores user; with issueToken it also
// mints the user's API token. Everything commits in one transaction, so a
// missing group or token failure leaves no account behind.
func (s *Service) Register(user *entities.User, password string, issueToken bool) (string, error) {
	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hash

	var token string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := users.NewRepository(tx).Create(user); err != nil {
			return err
		}
		if !issueToken {
			return nil
		}
		token, err = s.issueToken(tx, user.ID)
		return err
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate validates email and password for the client at ip and
// returns the user. Repeated failures lock the email out for a while.
func (s *Service) Authenticate(ip, email, password string) (*entities.User, error) {
	email = users.NormalizeEmail(email)

	if s.limiter != nil {
		if allowed, _ := s.limiter.Allow(ip, email); !allowed {
			return nil, ErrAccountLocked
		}
	}

	repo := users.NewRepository(s.db)
	user, err := repo.GetByEmail(email)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if err != nil || !user.IsActive || CheckPassword(password, user.PasswordHash) != nil {
		s.recordFailure(ip, email)
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(ip, email)
	}
	now := s.now()
	if err := repo.TouchLastLogin(user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now
	return user, nil
}

func (s *Service) recordFailure(ip, email string) {
	if s.limiter != nil {
		s.limiter.RecordFailure(ip, email)
	}
}

// IssueToken rotates the user's API token and returns the plaintext,
// which is never stored.
func (s *Service) IssueToken(userID uint) (string, error) {
	return s.issueToken(s.db, userID)
}

func (s *Service) issueToken(db *gorm.DB, userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &entities.AuthToken{
		UserID:    userID,
		TokenHash: hash,
		Prefix:    plaintext[:8],
	}
	if s.config.TokenExpiry > 0 {
		expires := s.now().Add(s.config.TokenExpiry)
		token.ExpiresAt = &expires
	}

	if err := tokens.NewRepository(db).Replace(token); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return plaintext, nil
}

// ValidateToken checks a plaintext token and returns its owner.
func (s *Service) ValidateToken(plaintext string) (*entities.User, *entities.AuthToken, error) {
	if plaintext == "" {
		return nil, nil, ErrInvalidToken
	}

	repo := tokens.NewRepository(s.db)
	token, err := repo.GetByHash(HashToken(plaintext))
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	now := s.now()
	if token.IsExpired(now) {
		return nil, nil, ErrTokenExpired
	}
	if !token.User.IsActive {
		return nil, nil, ErrInvalidToken
	}

	if err := repo.Touch(token.ID, now); err != nil {
		return nil, nil, fmt.Errorf("failed to touch token: %w", err)
	}

	user := token.User
	return &user, token, nil
}

// RevokeToken removes the user's API token.
func (s *Service) RevokeToken(userID uint) error {
	err := tokens.NewRepository(s.db).DeleteByUserID(userID)
	if err != nil && !errors.Is(err, tokens.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// PurgeExpiredTokens deletes every token past its expiry.
func (s *Service) PurgeExpiredTokens() (int64, error) {
	return tokens.NewRepository(s.db).DeleteExpired(s.now())
}

// GetUser loads a user with its groups.
func (s *Service) GetUser(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.Preload("Groups").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the user's password after checking the old one.
// Existing API tokens are revoked.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := users.NewRepository(s.db).GetByID(userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		user.PasswordHash = newHash
		if err := users.NewRepository(tx).Save(user); err != nil {
			return err
		}
		err := tokens.NewRepository(tx).DeleteByUserID(userID)
		if errors.Is(err, tokens.ErrTokenNotFound) {
			return nil
		}
		return err
	})
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := users.NewRepository(s.db).Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
