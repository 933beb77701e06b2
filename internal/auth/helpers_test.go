package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime:  24 * time.Hour,
		TokenExpiry:      time.Hour,
		BcryptCost:       4,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

// setupTestDB opens a migrated database holding the Admin and Student groups.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := database.Open(filepath.Join(t.TempDir(), "auth.db"), database.Options{LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	for _, name := range []string{"Admin", "Student"} {
		if err := d.DB.Create(&entities.Group{Name: name}).Error; err != nil {
			t.Fatalf("failed to create group %s: %v", name, err)
		}
	}
	return d.DB
}

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	cfg := testAuthConfig()
	limiter := NewRateLimiter(RateLimitConfigFrom(cfg))
	t.Cleanup(limiter.Stop)
	return NewService(db, cfg, limiter), db
}

func setupSessionManager(t *testing.T, db *gorm.DB) *SessionManager {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}
	sm, err := NewSessionManager(sqlDB, testAuthConfig())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func newStudent(email string) *entities.User {
	return &entities.User{
		Email:       email,
		Username:    "Rupam Solanki",
		FirstName:   "Rupam",
		LastName:    "Solanki",
		PhoneNumber: "987654321",
		UserType:    entities.UserTypeStudent,
		IsActive:    true,
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	resp := http.Response{Header: w.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == "sessionid" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response: %v", w.Header().Values("Set-Cookie"))
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}
