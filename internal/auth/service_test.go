package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mrlokans/bookcatalog/internal/database/tokens"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

func TestService_Register(t *testing.T) {
	svc, db := setupTestService(t)

	user := newStudent("rupam@mail.com")
	token, err := svc.Register(user, "password123", true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(token) != 40 {
		t.Errorf("token length = %d, want 40", len(token))
	}
	if user.PasswordHash == "" || user.PasswordHash == "password123" {
		t.Error("password should be stored hashed")
	}

	stored, err := tokens.NewRepository(db).GetByUserID(user.ID)
	if err != nil {
		t.Fatalf("token not stored: %v", err)
	}
	if stored.TokenHash != HashToken(token) {
		t.Error("stored token hash does not match the issued token")
	}
	if stored.ExpiresAt == nil {
		t.Error("token should carry an expiry")
	}

	got, err := svc.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if len(got.Groups) != 1 || got.Groups[0].Name != "Student" {
		t.Errorf("groups = %v, want [Student]", got.Groups)
	}
}

func TestService_Register_WithoutToken(t *testing.T) {
	svc, db := setupTestService(t)

	token, err := svc.Register(newStudent("james@mail.com"), "password123", false)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token != "" {
		t.Errorf("expected no token, got %q", token)
	}

	var count int64
	db.Model(&entities.AuthToken{}).Count(&count)
	if count != 0 {
		t.Errorf("token rows = %d, want 0", count)
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _ := setupTestService(t)

	if _, err := svc.Register(newStudent("dup@mail.com"), "password123", true); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(newStudent("DUP@mail.com"), "password123", true)
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestService_Register_MissingGroupRollsBack(t *testing.T) {
	svc, db := setupTestService(t)
	db.Where("name = ?", "Student").Delete(&entities.Group{})

	_, err := svc.Register(newStudent("lost@mail.com"), "password123", true)
	if !errors.Is(err, entities.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	var users, tokenRows int64
	db.Model(&entities.User{}).Count(&users)
	db.Model(&entities.AuthToken{}).Count(&tokenRows)
	if users != 0 || tokenRows != 0 {
		t.Errorf("users = %d, tokens = %d; want nothing committed", users, tokenRows)
	}
}

func TestService_Register_ShortPassword(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Register(newStudent("short@mail.com"), "short", false)
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := setupTestService(t)

	user := newStudent("login@mail.com")
	if _, err := svc.Register(user, "password123", false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "login@mail.com", "password123", nil},
		{"email is case insensitive", "  LOGIN@mail.com ", "password123", nil},
		{"wrong password", "login@mail.com", "wrong-password", ErrInvalidCredentials},
		{"unknown email", "nobody@mail.com", "password123", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate("127.0.0.1", tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if got.ID != user.ID {
					t.Errorf("user id = %d, want %d", got.ID, user.ID)
				}
				if got.LastLogin == nil {
					t.Error("LastLogin should be set on success")
				}
			}
		})
	}
}

func TestService_Authenticate_InactiveUser(t *testing.T) {
	svc, db := setupTestService(t)

	user := newStudent("inactive@mail.com")
	if _, err := svc.Register(user, "password123", false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	db.Model(&entities.User{}).Where("id = ?", user.ID).UpdateColumn("is_active", false)

	if _, err := svc.Authenticate("127.0.0.1", "inactive@mail.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Authenticate_Lockout(t *testing.T) {
	svc, _ := setupTestService(t)

	if _, err := svc.Register(newStudent("locked@mail.com"), "password123", false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < testAuthConfig().MaxLoginAttempts; i++ {
		if _, err := svc.Authenticate("10.0.0.1", "locked@mail.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	if _, err := svc.Authenticate("10.0.0.1", "locked@mail.com", "password123"); !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}

	// Another client is not affected.
	if _, err := svc.Authenticate("10.0.0.2", "locked@mail.com", "password123"); err != nil {
		t.Errorf("other IP should log in, got %v", err)
	}
}

func TestService_TokenOperations(t *testing.T) {
	svc, _ := setupTestService(t)

	user := newStudent("tokens@mail.com")
	first, err := svc.Register(user, "password123", true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, token, err := svc.ValidateToken(first)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if got.ID != user.ID || token.UserID != user.ID {
		t.Errorf("token resolved to user %d, want %d", got.ID, user.ID)
	}

	// Issuing rotates: the old token stops working.
	second, err := svc.IssueToken(user.ID)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if second == first {
		t.Fatal("IssueToken() should mint a new token")
	}
	if _, _, err := svc.ValidateToken(first); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("old token: expected ErrInvalidToken, got %v", err)
	}

	if err := svc.RevokeToken(user.ID); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}
	if _, _, err := svc.ValidateToken(second); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("revoked token: expected ErrInvalidToken, got %v", err)
	}

	// Revoking twice is not an error.
	if err := svc.RevokeToken(user.ID); err != nil {
		t.Errorf("second RevokeToken() error = %v", err)
	}

	if _, _, err := svc.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token: expected ErrInvalidToken, got %v", err)
	}
}

func TestService_ExpiredTokens(t *testing.T) {
	svc, _ := setupTestService(t)

	user := newStudent("expiry@mail.com")
	token, err := svc.Register(user, "password123", true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, _, err := svc.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}

	purged, err := svc.PurgeExpiredTokens()
	if err != nil {
		t.Fatalf("PurgeExpiredTokens() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := setupTestService(t)

	user := newStudent("change@mail.com")
	token, err := svc.Register(user, "oldpassword1", true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrongpassword", "newpassword1"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}

	if err := svc.ChangePassword(user.ID, "oldpassword1", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := svc.Authenticate("127.0.0.1", "change@mail.com", "newpassword1"); err != nil {
		t.Errorf("new password should work, got %v", err)
	}
	if _, _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tokens should be revoked after a password change, got %v", err)
	}
}

func TestService_HasUsers(t *testing.T) {
	svc, _ := setupTestService(t)

	has, err := svc.HasUsers()
	if err != nil || has {
		t.Fatalf("HasUsers() = %v, %v; want false", has, err)
	}

	if _, err := svc.Register(newStudent("first@mail.com"), "password123", false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	has, err = svc.HasUsers()
	if err != nil || !has {
		t.Errorf("HasUsers() = %v, %v; want true", has, err)
	}
}
