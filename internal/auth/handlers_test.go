package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

type fakeRenderer struct {
	page string
	data gin.H
}

func (r *fakeRenderer) Render(c *gin.Context, status int, name string, data gin.H) {
	r.page = name
	r.data = data
	c.String(status, name)
}

type fakeAudit struct {
	actions []string
}

func (a *fakeAudit) LogAuth(userID uint, action, email string, req audit.Request, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	a.actions = append(a.actions, action+":"+status)
}

func (a *fakeAudit) LogRegister(user *entities.User, req audit.Request) {
	a.actions = append(a.actions, "register:"+user.Email)
}

type authPages struct {
	router   *gin.Engine
	service  *Service
	sessions *SessionManager
	renderer *fakeRenderer
	audit    *fakeAudit
}

func setupAuthPages(t *testing.T) *authPages {
	t.Helper()
	svc, db := setupTestService(t)
	sm := setupSessionManager(t, db)
	p := &authPages{service: svc, sessions: sm, renderer: &fakeRenderer{}, audit: &fakeAudit{}}

	ctrl := NewAuthController(svc, sm, validation.New(), p.renderer, p.audit)

	p.router = gin.New()
	p.router.Use(sm.SessionLoadSave(), LoadPrincipal(NewSessionAuthenticator(sm, svc)))
	ctrl.RegisterRoutes(p.router)
	p.router.GET("/flashes", func(c *gin.Context) {
		var msgs []string
		for _, f := range sm.PopFlashes(c.Request) {
			msgs = append(msgs, f.Level+":"+f.Message)
		}
		c.String(http.StatusOK, strings.Join(msgs, "|"))
	})
	return p
}

func (p *authPages) post(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)
	return w
}

func (p *authPages) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)
	return w
}

func registrationForm(email string) url.Values {
	return url.Values{
		"email":        {email},
		"first_name":   {"James"},
		"last_name":    {"Woods"},
		"phone_number": {"987654321"},
		"password":     {"password123"},
		"user_type":    {"student"},
	}
}

func TestAuthController_RegisterPage(t *testing.T) {
	p := setupAuthPages(t)

	w := p.get(t, "/userRegister/?next=/book/dune", nil)
	if w.Code != http.StatusOK || p.renderer.page != "register.html" {
		t.Fatalf("expected register page, got %d %q", w.Code, p.renderer.page)
	}
	if p.renderer.data["Next"] != "/book/dune" {
		t.Errorf("Next = %v", p.renderer.data["Next"])
	}

	w = p.get(t, "/userRegister/?next=https://evil.com", nil)
	if p.renderer.data["Next"] != "/" {
		t.Errorf("external next should be dropped, got %v", p.renderer.data["Next"])
	}
}

func TestAuthController_RegisterAndLogout(t *testing.T) {
	p := setupAuthPages(t)

	w := p.post(t, "/userRegister/", registrationForm("james@mail.com"), nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
	}
	cookie := sessionCookie(t, w)

	user, err := p.service.Authenticate("127.0.0.1", "james@mail.com", "password123")
	if err != nil {
		t.Fatalf("registered user cannot log in: %v", err)
	}
	if user.Username != "James Woods" {
		t.Errorf("Username = %q, want %q", user.Username, "James Woods")
	}

	// Logged-in users skip the registration page.
	w = p.get(t, "/userRegister/", cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("expected redirect to /, got %d", w.Code)
	}

	w = p.post(t, "/userLogout/", nil, cookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect to %s, got %d %q", LoginPath, w.Code, w.Header().Get("Location"))
	}

	w = p.get(t, "/userRegister/", cookie)
	if w.Code != http.StatusOK {
		t.Errorf("old cookie should be logged out, got %d", w.Code)
	}

	want := []string{"register:james@mail.com", "session_logout:ok"}
	if strings.Join(p.audit.actions, ",") != strings.Join(want, ",") {
		t.Errorf("audit actions = %v, want %v", p.audit.actions, want)
	}
}

func TestAuthController_RegisterInvalid(t *testing.T) {
	p := setupAuthPages(t)

	form := registrationForm("james@mail.com")
	form.Set("phone_number", "98-76")
	w := p.post(t, "/userRegister/", form, nil)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect back, got %d %q", w.Code, w.Header().Get("Location"))
	}
	w = p.get(t, "/flashes", sessionCookie(t, w))
	if w.Body.String() != FlashError+":"+MsgInvalidInput {
		t.Errorf("flashes = %q", w.Body.String())
	}
}

func TestAuthController_RegisterDuplicate(t *testing.T) {
	p := setupAuthPages(t)

	if _, err := p.service.Register(newStudent("james@mail.com"), "password123", false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	w := p.post(t, "/userRegister/", registrationForm("james@mail.com"), nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != LoginPath {
		t.Fatalf("expected redirect back, got %d", w.Code)
	}
	w = p.get(t, "/flashes", sessionCookie(t, w))
	if w.Body.String() != FlashError+":"+MsgUserExists {
		t.Errorf("flashes = %q", w.Body.String())
	}
}

func TestAuthController_Login(t *testing.T) {
	p := setupAuthPages(t)

	if _, err := p.service.Register(newStudent("rupam@mail.com"), "password123", false); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("wrong password flashes and keeps next", func(t *testing.T) {
		w := p.post(t, "/userLogin/", url.Values{
			"email":    {"rupam@mail.com"},
			"password": {"wrong-password"},
			"next":     {"/book/dune"},
		}, nil)

		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != LoginPath+"?next=%2Fbook%2Fdune" {
			t.Errorf("Location = %q", loc)
		}
		w = p.get(t, "/flashes", sessionCookie(t, w))
		if w.Body.String() != FlashError+":"+MsgInvalidCredential {
			t.Errorf("flashes = %q", w.Body.String())
		}
	})

	t.Run("success redirects to next", func(t *testing.T) {
		w := p.post(t, "/userLogin/", url.Values{
			"email":    {"rupam@mail.com"},
			"password": {"password123"},
			"next":     {"/book/dune"},
		}, nil)

		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/book/dune" {
			t.Fatalf("expected redirect to /book/dune, got %d %q", w.Code, w.Header().Get("Location"))
		}
		sessionCookie(t, w)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := p.post(t, "/userLogin/", url.Values{"email": {"rupam@mail.com"}}, nil)
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != LoginPath {
			t.Errorf("expected redirect back, got %d %q", w.Code, w.Header().Get("Location"))
		}
	})
}

func TestAuthController_LogoutRequiresSession(t *testing.T) {
	p := setupAuthPages(t)

	w := p.post(t, "/userLogout/", nil, nil)
	if w.Code != http.StatusFound || !strings.HasPrefix(w.Header().Get("Location"), LoginPath) {
		t.Errorf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}
