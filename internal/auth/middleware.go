package auth

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

const contextKeyPrincipal = "auth_principal"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/userRegister/"

// UnauthenticatedMessage is the REST body for missing or bad credentials.
const UnauthenticatedMessage = "Authentication credentials were not provided."

// LoadPrincipal authenticates the request when possible and stores the
// principal in the context. Anonymous requests pass through.
func LoadPrincipal(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := a.Authenticate(c.Request)
		switch {
		case err == nil:
			c.Set(contextKeyPrincipal, principal)
		case err != ErrUnauthenticated:
			log.Printf("[auth] authentication failed: %v", err)
		}
		c.Next()
	}
}

// RequireAPIAuth rejects requests without a principal with a JSON 401.
// Run it after LoadPrincipal.
func RequireAPIAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"Error": UnauthenticatedMessage})
			return
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous page requests to the login page,
// remembering where they were going.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			target := LoginPath
			if next := c.Request.URL.RequestURI(); next != "" && next != "/" {
				target += "?next=" + url.QueryEscape(next)
			}
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal or nil.
func GetPrincipal(c *gin.Context) *Principal {
	if v, exists := c.Get(contextKeyPrincipal); exists {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}

// GetUser returns the authenticated user or nil.
func GetUser(c *gin.Context) *entities.User {
	if p := GetPrincipal(c); p != nil {
		return p.User
	}
	return nil
}

// GetUserID returns the authenticated user's ID, or 0.
func GetUserID(c *gin.Context) uint {
	if u := GetUser(c); u != nil {
		return u.ID
	}
	return 0
}

// GetAuthType reports how the request was authenticated, or "".
func GetAuthType(c *gin.Context) AuthType {
	if p := GetPrincipal(c); p != nil {
		return p.Method
	}
	return ""
}

// IsAuthenticated returns true if the request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	return GetPrincipal(c) != nil
}
