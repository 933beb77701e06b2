package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/permissions"
	"github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)

// PermissionLister implementations
var _ http.PermissionLister = (*permissions.Repository)(nil)

// PermissionStore / PermissionFinder implementations
var _ access.PermissionStore = (*permissions.Repository)(nil)
var _ access.PermissionFinder = (*permissions.Repository)(nil)

// =============================================================================
// Authentication
// =============================================================================

// Authenticator implementations
var _ auth.Authenticator = (*auth.SessionAuthenticator)(nil)
var _ auth.Authenticator = (*auth.TokenAuthenticator)(nil)

// Renderer implementations
var _ auth.Renderer = (*http.PageRenderer)(nil)

// AuditLogger implementations
var _ auth.AuditLogger = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

// Maintenance task dependencies
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.TokenPurger = (*auth.Service)(nil)

// MaintenanceEnqueuer implementations
var _ scheduler.MaintenanceEnqueuer = (*tasks.Client)(nil)
