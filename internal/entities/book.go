package entities

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/utils"
)

type BookCategory string

const (
	CategoryStory       BookCategory = "story"
	CategoryEducational BookCategory = "educational"
	CategoryHistorical  BookCategory = "historical"
)

// BookCategories lists the accepted categories in display order.
var BookCategories = []BookCategory{CategoryStory, CategoryEducational, CategoryHistorical}

// Valid reports whether c is one of BookCategories.
func (c BookCategory) Valid() bool {
	for _, known := range BookCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Column limits shared by forms, serializers and the schema.
const (
	BookTitleMaxLength  = 50
	BookAuthorMaxLength = 15
)

// ErrEmptySlug is returned when a title has no characters that survive slugify.
var ErrEmptySlug = errors.New("title must contain at least one letter or digit")

type Book struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:50;not null" json:"title"`
	Category    BookCategory `gorm:"size:20;not null" json:"category"`
	Description string       `gorm:"type:text" json:"description"`
	Author      string       `gorm:"size:15" json:"author"`
	Slug        string       `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// BeforeSave derives the slug from the title on every write. A title edit
// therefore moves the book to a new slug.
func (b *Book) BeforeSave(tx *gorm.DB) error {
	b.Slug = utils.Slugify(b.Title)
	if b.Slug == "" {
		return ErrEmptySlug
	}
	return nil
}
