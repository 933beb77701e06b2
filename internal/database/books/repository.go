// Package books provides database operations for the book catalog.
//
// Writes run in a transaction that re-checks slug uniqueness next to the
// unique index, so a duplicate title surfaces as ErrDuplicateSlug whether
// the pre-check or the constraint catches it.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	lookup, err := books.ParseLookup(c.Param("lookup"))
//	book, err := repo.Get(lookup)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateSlug = errors.New("book with this slug already exists")
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func scope(db *gorm.DB, l Lookup) *gorm.DB {
	switch l.kind {
	case lookupByID:
		return db.Where("id = ?", l.id)
	case lookupBySlugOrTitle:
		return db.Where("title = ? OR slug = ?", l.text, l.text)
	case lookupBySlug:
		return db.Where("slug = ?", l.text)
	}
	return db.Where("1 = 0")
}

func get(db *gorm.DB, l Lookup) (*entities.Book, error) {
	var book entities.Book
	err := scope(db, l).Order("id ASC").First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// slugTaken reports whether another book already owns the slug that
// title will produce.
func slugTaken(db *gorm.DB, title string, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&entities.Book{}).Where("slug = ?", utils.Slugify(title))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlug
	}
	return err
}

// Get retrieves the book matched by l.
func (r *Repository) Get(l Lookup) (*entities.Book, error) {
	return get(r.db, l)
}

// Create inserts book; its slug is derived from the title.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taken, err := slugTaken(tx, book.Title, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateSlug
		}
		return translate(tx.Create(book).Error)
	})
}

// Update loads the book matched by l, applies mutate and saves the
// result. mutate errors abort the transaction and are returned as-is.
func (r *Repository) Update(l Lookup, mutate func(*entities.Book) error) (*entities.Book, error) {
	var updated *entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := get(tx, l)
		if err != nil {
			return err
		}
		if err := mutate(book); err != nil {
			return err
		}
		taken, err := slugTaken(tx, book.Title, book.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateSlug
		}
		if err := tx.Save(book).Error; err != nil {
			return translate(err)
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the book matched by l and returns it.
func (r *Repository) Delete(l Lookup) (*entities.Book, error) {
	var deleted *entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		book, err := get(tx, l)
		if err != nil {
			return err
		}
		if err := tx.Delete(&entities.Book{}, book.ID).Error; err != nil {
			return err
		}
		deleted = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// List returns one page of books in insertion order and the total count.
func (r *Repository) List(limit, offset int) ([]entities.Book, int64, error) {
	var total int64
	if err := r.db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	var books []entities.Book
	err := r.db.Order("id ASC").Limit(limit).Offset(offset).Find(&books).Error
	return books, total, err
}

// Count returns the number of books in the catalog.
func (r *Repository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entities.Book{}).Count(&total).Error
	return total, err
}
