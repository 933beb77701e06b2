package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// fakeBinder copies a prepared value into the destination, standing in for
// gin's form decoding.
type fakeBinder struct {
	fill func(dst any)
	err  error
}

func (f fakeBinder) ShouldBind(dst any) error {
	if f.err != nil {
		return f.err
	}
	f.fill(dst)
	return nil
}

func TestBind_BookForm(t *testing.T) {
	b := fakeBinder{fill: func(dst any) {
		*dst.(*BookForm) = BookForm{Title: "  Dune ", Category: "story", Author: "Herbert"}
	}}

	var form BookForm
	require.NoError(t, Bind(b, validation.New(), &form))
	assert.Equal(t, "Dune", form.Title)

	var book entities.Book
	form.Apply(&book)
	assert.Equal(t, entities.CategoryStory, book.Category)
	assert.Equal(t, "Herbert", book.Author)
}

func TestBind_BookFormInvalid(t *testing.T) {
	b := fakeBinder{fill: func(dst any) {
		*dst.(*BookForm) = BookForm{Title: "Dune", Category: "poetry", Author: "A very long author name"}
	}}

	var form BookForm
	err := Bind(b, validation.New(), &form)
	fe, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, validation.CategoryMessage, fe["category"])
	assert.Contains(t, fe, "author")
}

func TestBind_DecodeError(t *testing.T) {
	decodeErr := errors.New("bad body")
	var form LoginForm
	assert.ErrorIs(t, Bind(fakeBinder{err: decodeErr}, validation.New(), &form), decodeErr)
}

func TestNewBookForm(t *testing.T) {
	book := &entities.Book{Title: "Dune", Category: entities.CategoryHistorical, Description: "d", Author: "a", Slug: "dune"}
	form := NewBookForm(book)
	assert.Equal(t, BookForm{Title: "Dune", Category: "historical", Description: "d", Author: "a"}, form)
}

func TestRegistrationForm_User(t *testing.T) {
	b := fakeBinder{fill: func(dst any) {
		*dst.(*RegistrationForm) = RegistrationForm{
			Email:       "rupam@mail.com",
			FirstName:   " Rupam",
			LastName:    "Solanki ",
			PhoneNumber: "987654321",
			Password:    "password",
			UserType:    "student",
		}
	}}

	var form RegistrationForm
	require.NoError(t, Bind(b, validation.New(), &form))

	user := form.User()
	assert.Equal(t, "Rupam Solanki", user.Username)
	assert.Equal(t, entities.UserTypeStudent, user.UserType)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.PasswordHash)
}

func TestRegistrationForm_Invalid(t *testing.T) {
	b := fakeBinder{fill: func(dst any) {
		*dst.(*RegistrationForm) = RegistrationForm{Email: "not-an-email", PhoneNumber: "12ab", Password: "short", UserType: "teacher"}
	}}

	var form RegistrationForm
	fe, ok := validation.AsErrors(Bind(b, validation.New(), &form))
	require.True(t, ok)
	for _, field := range []string{"email", "first_name", "last_name", "phone_number", "password", "user_type"} {
		assert.Contains(t, fe, field)
	}
}
