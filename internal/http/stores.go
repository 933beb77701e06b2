package http

import (
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Store interfaces used by the controllers. *books.Repository and
// *permissions.Repository satisfy them.

// BookStore is the catalog storage shared by the REST and HTML book
// controllers. Every write runs in its own transaction.
type BookStore interface {
	Get(l books.Lookup) (*entities.Book, error)
	Create(book *entities.Book) error
	Update(l books.Lookup, mutate func(*entities.Book) error) (*entities.Book, error)
	Delete(l books.Lookup) (*entities.Book, error)
	List(limit, offset int) ([]entities.Book, int64, error)
	Count() (int64, error)
}

// PermissionLister reports a user's effective permissions.
type PermissionLister interface {
	UserPermissions(userID uint) ([]entities.Permission, error)
}
