// Package serializers shapes REST payloads: request decoding and
// validation on the way in, record representation on the way out.
package serializers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// Category accepts any JSON scalar so that a number or bool fails the
// category rule instead of the decoder. Objects and arrays keep their raw
// text for the same reason.
type Category string

func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Category(s)
		return nil
	}
	*c = Category(data)
	return nil
}

// BookRequest is the writable part of a book. A client-supplied slug is
// accepted and ignored because the slug is always derived from the title.
type BookRequest struct {
	Title       string   `json:"title" validate:"required,max=50"`
	Category    Category `json:"category" validate:"required,book_category"`
	Description string   `json:"description"`
	Author      string   `json:"author" validate:"required,max=15"`
	Slug        string   `json:"slug" validate:"-"`
}

// NewBookRequest seeds a request from an existing book. Decoding a partial
// body on top of it yields the merged record a partial update validates.
func NewBookRequest(b *entities.Book) BookRequest {
	return BookRequest{
		Title:       b.Title,
		Category:    Category(b.Category),
		Description: b.Description,
		Author:      b.Author,
	}
}

// Validate normalizes the request and checks it against the book rules.
func (r *BookRequest) Validate(v *validation.Validator) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	return v.Validate(r)
}

// Apply copies the request onto b.
func (r *BookRequest) Apply(b *entities.Book) {
	b.Title = r.Title
	b.Category = entities.BookCategory(r.Category)
	b.Description = r.Description
	b.Author = r.Author
}

// BookResponse is the public representation of a book.
type BookResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Slug        string `json:"slug"`
}

func NewBookResponse(b *entities.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Category:    string(b.Category),
		Description: b.Description,
		Author:      b.Author,
		Slug:        b.Slug,
	}
}

func NewBookResponses(books []entities.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i := range books {
		out[i] = NewBookResponse(&books[i])
	}
	return out
}

// PageResponse is the paginated list envelope.
type PageResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}
