// Package forms binds and validates the HTML form submissions.
package forms

import (
	"strings"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// Binder decodes a request body into a struct; *gin.Context satisfies it.
type Binder interface {
	ShouldBind(obj any) error
}

// Bind decodes the submission into dst and validates it.
func Bind(b Binder, v *validation.Validator, dst any) error {
	if err := b.ShouldBind(dst); err != nil {
		return err
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	return v.Validate(dst)
}

type BookForm struct {
	Title       string `form:"title" validate:"required,max=50"`
	Category    string `form:"category" validate:"required,book_category"`
	Description string `form:"description"`
	Author      string `form:"author" validate:"required,max=15"`
}

// NewBookForm pre-populates the edit form from an existing book.
func NewBookForm(b *entities.Book) BookForm {
	return BookForm{
		Title:       b.Title,
		Category:    string(b.Category),
		Description: b.Description,
		Author:      b.Author,
	}
}

func (f *BookForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
}

// Apply copies the form onto b. The slug is derived on save.
func (f *BookForm) Apply(b *entities.Book) {
	b.Title = f.Title
	b.Category = entities.BookCategory(f.Category)
	b.Description = f.Description
	b.Author = f.Author
}

type LoginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (f *LoginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

type RegistrationForm struct {
	Email       string `form:"email" validate:"required,email,max=75"`
	FirstName   string `form:"first_name" validate:"required,max=25"`
	LastName    string `form:"last_name" validate:"required,max=25"`
	PhoneNumber string `form:"phone_number" validate:"required,digits,max=15"`
	Password    string `form:"password" validate:"required,min=8,max=72"`
	UserType    string `form:"user_type" validate:"required,user_type"`
}

func (f *RegistrationForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
}

// User builds the account the form describes. Username is derived from
// the first and last name; the password is hashed by the caller.
func (f *RegistrationForm) User() *entities.User {
	u := &entities.User{
		Email:       f.Email,
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		PhoneNumber: f.PhoneNumber,
		UserType:    entities.UserType(f.UserType),
		IsActive:    true,
	}
	u.Username = u.FullName()
	return u
}
