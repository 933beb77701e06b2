package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/auth"
)

// MsgPermissionDenied is the REST body for a failed permission check.
const MsgPermissionDenied = "You do not have permission to perform this action."

// RequirePermission checks the caller against the permission the request
// method maps to on resource. It must run after authentication.
func RequirePermission(checker *access.Checker, resource access.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := checker.CheckMethod(auth.GetUser(c), resource, c.Request.Method)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, access.ErrPermissionDenied):
			c.AbortWithStatusJSON(http.StatusForbidden, Response{Error: MsgPermissionDenied})
		case errors.Is(err, access.ErrUnsupportedMethod):
			c.AbortWithStatusJSON(http.StatusMethodNotAllowed, Response{Error: err.Error()})
		default:
			log.Printf("[access] permission check for %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Error: err.Error()})
		}
	}
}
