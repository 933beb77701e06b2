package auth

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/forms"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// Messages flashed by the registration page.
const (
	MsgInvalidInput      = "Please insert correct value!"
	MsgUserExists        = "User already exists"
	MsgInvalidCredential = "Invalid Credential!"
	MsgTooManyAttempts   = "Too many login attempts. Please try again later."
)

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// Renderer draws a named page template with the shared layout data.
type Renderer interface {
	Render(c *gin.Context, status int, name string, data gin.H)
}

// AuditLogger receives authentication events.
type AuditLogger interface {
	LogAuth(userID uint, action, email string, req audit.Request, err error)
	LogRegister(user *entities.User, req audit.Request)
}

// AuthController serves the HTML registration, login and logout pages.
type AuthController struct {
	service   *Service
	sessions  *SessionManager
	validator *validation.Validator
	renderer  Renderer
	audit     AuditLogger
}

// NewAuthController creates a new authentication controller. auditLog may be nil.
func NewAuthController(service *Service, sessions *SessionManager, v *validation.Validator, renderer Renderer, auditLog AuditLogger) *AuthController {
	return &AuthController{
		service:   service,
		sessions:  sessions,
		validator: v,
		renderer:  renderer,
		audit:     auditLog,
	}
}

// RegisterRoutes registers the auth pages. The group must already load
// the session principal.
func (ac *AuthController) RegisterRoutes(group gin.IRouter) {
	group.GET("/userRegister/", ac.RegisterPage)
	group.POST("/userRegister/", ac.Register)
	group.POST("/userLogin/", ac.Login)
	group.POST("/userLogout/", RequireLogin(), ac.Logout)
}

// RegisterPage renders the combined registration and login page.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if IsAuthenticated(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ac.renderer.Render(c, http.StatusOK, "register.html", gin.H{
		"Title":     "Register",
		"Next":      sanitizeRedirectPath(c.Query("next")),
		"UserTypes": entities.UserTypes,
	})
}

// Register handles the registration form and logs the new user in.
func (ac *AuthController) Register(c *gin.Context) {
	var form forms.RegistrationForm
	if err := forms.Bind(c, ac.validator, &form); err != nil {
		ac.sessions.PutFlash(c.Request, FlashError, MsgInvalidInput)
		c.Redirect(http.StatusSeeOther, LoginPath)
		return
	}

	user := form.User()
	if _, err := ac.service.Register(user, form.Password, false); err != nil {
		if errors.Is(err, ErrUserExists) {
			ac.sessions.PutFlash(c.Request, FlashError, MsgUserExists)
			c.Redirect(http.StatusSeeOther, LoginPath)
			return
		}
		log.Printf("[auth] registration of %s failed: %v", user.Email, err)
		ac.renderer.Render(c, http.StatusInternalServerError, "error.html", gin.H{
			"Title": "Error",
			"Error": err.Error(),
		})
		return
	}

	if ac.audit != nil {
		ac.audit.LogRegister(user, audit.RequestFromContext(c))
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		log.Printf("[auth] failed to create session: %v", err)
		c.Redirect(http.StatusSeeOther, LoginPath)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	next := sanitizeRedirectPath(c.PostForm("next"))
	back := LoginPath
	if next != "/" {
		back += "?next=" + url.QueryEscape(next)
	}

	var form forms.LoginForm
	if err := forms.Bind(c, ac.validator, &form); err != nil {
		ac.sessions.PutFlash(c.Request, FlashError, MsgInvalidCredential)
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	user, err := ac.service.Authenticate(c.ClientIP(), form.Email, form.Password)
	if ac.audit != nil {
		var userID uint
		if user != nil {
			userID = user.ID
		}
		ac.audit.LogAuth(userID, "session_login", form.Email, audit.RequestFromContext(c), err)
	}
	if err != nil {
		msg := MsgInvalidCredential
		switch {
		case errors.Is(err, ErrAccountLocked):
			msg = MsgTooManyAttempts
		case !errors.Is(err, ErrInvalidCredentials):
			log.Printf("[auth] login failed: %v", err)
		}
		ac.sessions.PutFlash(c.Request, FlashError, msg)
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		log.Printf("[auth] failed to create session: %v", err)
		ac.sessions.PutFlash(c.Request, FlashError, "Failed to create session")
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	c.Redirect(http.StatusSeeOther, next)
}

// Logout destroys the session and redirects to the registration page.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.sessions.DestroySession(c.Request); err != nil {
		log.Printf("[auth] failed to destroy session: %v", err)
	}
	if ac.audit != nil {
		ac.audit.LogAuth(userID, "session_logout", "", audit.RequestFromContext(c), nil)
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
}
