// Package database opens the SQLite catalog and migrates its schema.
//
// Data access lives in per-domain sub-packages, each exposing a Repository
// over a *gorm.DB so it can run inside a caller's transaction:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Book CRUD and the Lookup variant
//	├── users/           # User accounts
//	├── tokens/          # REST API tokens
//	├── permissions/     # Groups, permissions and grants
//	├── audit/           # Audit events
//	└── seed/            # Idempotent bootstrap data
//
// Typical use:
//
//	db, err := database.NewDatabase("./bookcatalog.db")
//	err = db.DB.Transaction(func(tx *gorm.DB) error {
//		return books.NewRepository(tx).Create(book)
//	})
package database
