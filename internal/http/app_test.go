package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditrepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/permissions"
	"github.com/mrlokans/bookcatalog/internal/database/seed"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

const (
	adminEmail   = "admin@mail.com"
	studentEmail = "rupam@mail.com"
	testPageSize = 2
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testApp is a fully wired router over a seeded database holding the
// default accounts and no books.
type testApp struct {
	router  *gin.Engine
	db      *database.Database
	books   *books.Repository
	service *auth.Service
	auditor *audit.Service
}

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionLifetime:  time.Hour,
		BcryptCost:       4,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "catalog.db"), database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := access.DefaultRegistry()
	_, err = seed.NewSeeder(db.DB, registry, seed.Options{BcryptCost: 4, FakerSeed: 1}).Run()
	require.NoError(t, err)

	cfg := testAuthConfig()
	limiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg))
	t.Cleanup(limiter.Stop)
	service := auth.NewService(db.DB, cfg, limiter)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	auditor := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditor.Wait)

	bookRepo := books.NewRepository(db.DB)
	perms := permissions.NewRepository(db.DB)

	router := NewRouter(RouterConfig{
		Database:       db,
		Books:          bookRepo,
		Permissions:    perms,
		Checker:        access.NewChecker(registry, perms),
		Validator:      validation.New(),
		Auditor:        auditor,
		AuthService:    service,
		SessionManager: sessions,
		PageSize:       testPageSize,
		Version:        "test",
	})

	return &testApp{
		router:  router,
		db:      db,
		books:   bookRepo,
		service: service,
		auditor: auditor,
	}
}

func (a *testApp) addBook(t *testing.T, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Category: entities.CategoryStory, Author: "Tester"}
	require.NoError(t, a.books.Create(book))
	return book
}

// do sends a JSON request, authenticated with token when it is not empty.
func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// token logs email in through the REST login endpoint.
func (a *testApp) token(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/restUserLogin/", "", map[string]string{
		"username": email,
		"password": seed.DefaultPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// postForm submits an HTML form, carrying cookie when it is set.
func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login opens a page session for email and returns its cookie.
func (a *testApp) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	w := a.postForm(t, "/userLogin/", url.Values{
		"email":    {email},
		"password": {seed.DefaultPassword},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(t, "/", w.Header().Get("Location"))
	return sessionCookie(t, w)
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

// envelope decodes a REST response body.
type envelope struct {
	Data    json.RawMessage `json:"Data"`
	Message string          `json:"Message"`
	Error   json.RawMessage `json:"Error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// errorText returns the Error field when it is a plain string.
func (e envelope) errorText(t *testing.T) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(e.Error, &s), string(e.Error))
	return s
}
