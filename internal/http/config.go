package http

import (
	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Books       BookStore
	Permissions PermissionLister
	Checker     *access.Checker
	Validator   *validation.Validator
	Auditor     *audit.Service // Optional

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	CSRFSecret     []byte // CSRF protection is off when empty
	SecureCookies  bool

	// REST origins allowed by CORS; empty allows any origin
	CORSOrigins []string

	// Both list surfaces page by this many books
	PageSize int

	// TemplatesPath overrides the embedded templates when set
	TemplatesPath string

	// Application info
	Version string
}
