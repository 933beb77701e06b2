package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// ErrUnauthenticated means the request carried no usable credentials.
var ErrUnauthenticated = errors.New("authentication credentials were not provided")

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeSession AuthType = "session"
	AuthTypeToken   AuthType = "token"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	User   *entities.User
	Method AuthType
	Token  *entities.AuthToken // set for token auth only
}

// Authenticator resolves the caller of a request. Implementations return
// ErrUnauthenticated when the request has no valid credentials.
type Authenticator interface {
	Authenticate(r *http.Request) (*Principal, error)
}

// SessionAuthenticator reads the user id stored in the session cookie.
type SessionAuthenticator struct {
	sessions *SessionManager
	service  *Service
}

func NewSessionAuthenticator(sessions *SessionManager, service *Service) *SessionAuthenticator {
	return &SessionAuthenticator{sessions: sessions, service: service}
}

func (a *SessionAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	userID := a.sessions.GetUserID(r)
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	user, err := a.service.GetUser(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}

	return &Principal{User: user, Method: AuthTypeSession}, nil
}

// TokenAuthenticator accepts "Authorization: Token <t>" and
// "Authorization: Bearer <t>".
type TokenAuthenticator struct {
	service *Service
}

func NewTokenAuthenticator(service *Service) *TokenAuthenticator {
	return &TokenAuthenticator{service: service}
}

func (a *TokenAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	plaintext, ok := ParseAuthorization(r.Header.Get("Authorization"))
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, token, err := a.service.ValidateToken(plaintext)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return &Principal{User: user, Method: AuthTypeToken, Token: token}, nil
}

// ParseAuthorization extracts the token from an Authorization header value.
func ParseAuthorization(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	if !strings.EqualFold(scheme, "token") && !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
