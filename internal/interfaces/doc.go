// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book CRUD and paging (internal/http/stores.go)
//   - PermissionLister: A user's effective permissions (internal/http/stores.go)
//   - PermissionStore: Codename lookup and grant checks (internal/access/checker.go)
//
// ## Authentication Interfaces
//
//   - Authenticator: Resolves a request to a Principal (internal/auth/authenticator.go)
//   - Renderer: Draws pages for the auth controller (internal/auth/handlers.go)
//   - AuditLogger: Receives login and registration events (internal/auth/handlers.go)
//
// ## Background Work Interfaces
//
//   - AuditEventCleaner, TokenPurger: Housekeeping targets (internal/tasks/)
//   - MaintenanceEnqueuer: Queues a round of housekeeping (internal/scheduler/maintenance.go)
//
// # Adding a New Resource
//
// To put a new model behind the same permission checks as books:
//
//  1. Add the model to internal/entities/ and AutoMigrate it in internal/database/
//
//  2. Create sub-package internal/database/<resource>/ with a Repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the resource to access.DefaultRegistry so migrate creates its
//     add/change/delete/view permissions, and grant them to the seeded groups
//
//  4. Register the REST routes behind RequirePermission(checker, resource)
//
//  5. Add compile-time check:
//
//     var _ http.AuthorStore = (*authors.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
