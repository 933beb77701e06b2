package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/pagination"
	"github.com/mrlokans/bookcatalog/internal/serializers"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// REST book messages.
const (
	MsgBookNotFound    = "Book does not exist"
	MsgBooksFetched    = "Books fetched successfully"
	MsgBookFetched     = "Book fetched successfully"
	MsgBookDeleted     = "Book deleted successfully"
	MsgInvalidPage     = "Invalid page."
	msgActionAdding    = "adding book"
	msgActionListing   = "fetching book list"
	msgActionFetching  = "fetching book"
	msgActionUpdating  = "updating book"
	msgActionDeleting  = "deleting book"
	bookAddedSuffix    = " Book added successfully"
	bookUpdatedSuffix  = " Book updated successfully"
	bookConflictSuffix = " Book already exists"
)

var errMalformedBody = errors.New("malformed request body")

// BooksAPIController serves /rest/book/.
type BooksAPIController struct {
	store     BookStore
	validator *validation.Validator
	auditor   *audit.Service
	pageSize  int
}

// NewBooksAPIController creates the REST book controller. auditor may be nil.
func NewBooksAPIController(store BookStore, v *validation.Validator, auditor *audit.Service, pageSize int) *BooksAPIController {
	return &BooksAPIController{
		store:     store,
		validator: v,
		auditor:   auditor,
		pageSize:  pageSize,
	}
}

func (bc *BooksAPIController) logBook(c *gin.Context, eventType entities.AuditEventType, book *entities.Book) {
	if bc.auditor != nil {
		bc.auditor.LogBook(auth.GetUserID(c), eventType, book, audit.RequestFromContext(c))
	}
}

// lookup resolves the :lookup path key or answers 404.
func (bc *BooksAPIController) lookup(c *gin.Context, action string) (books.Lookup, bool) {
	l, err := books.ParseLookup(c.Param("lookup"))
	if err != nil {
		respondError(c, http.StatusNotFound, MsgBookNotFound, errorWhile(action))
		return books.Lookup{}, false
	}
	return l, true
}

// decodeBook reads a JSON body into dst and validates it.
func (bc *BooksAPIController) decodeBook(body []byte, dst *serializers.BookRequest) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return dst.Validate(bc.validator)
}

// respondWriteError maps a failed create or update onto the envelope.
func (bc *BooksAPIController) respondWriteError(c *gin.Context, err error, title, action string) {
	switch {
	case errors.Is(err, books.ErrBookNotFound):
		respondError(c, http.StatusNotFound, MsgBookNotFound, errorWhile(action))
	case errors.Is(err, books.ErrDuplicateSlug):
		respondError(c, http.StatusBadRequest, title+bookConflictSuffix, errorWhile(action))
	case errors.Is(err, entities.ErrEmptySlug):
		respondError(c, http.StatusBadRequest, validation.Errors{"title": err.Error()}, errorWhile(action))
	case isClientInputError(err):
		respondBadRequest(c, err, errorWhile(action))
	default:
		respondInternalError(c, err, action)
	}
}

// Create handles POST /rest/book/.
func (bc *BooksAPIController) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, err, errorWhile(msgActionAdding))
		return
	}

	var req serializers.BookRequest
	if err := bc.decodeBook(body, &req); err != nil {
		bc.respondWriteError(c, err, req.Title, msgActionAdding)
		return
	}

	book := &entities.Book{}
	req.Apply(book)
	if err := bc.store.Create(book); err != nil {
		bc.respondWriteError(c, err, req.Title, msgActionAdding)
		return
	}

	bc.logBook(c, entities.AuditEventCreate, book)
	respondData(c, http.StatusCreated, gin.H{"id": book.ID}, book.Title+bookAddedSuffix)
}

// List handles GET /rest/book/?page=N.
func (bc *BooksAPIController) List(c *gin.Context) {
	total, err := bc.store.Count()
	if err != nil {
		respondInternalError(c, err, msgActionListing)
		return
	}

	page, err := pagination.Strict(c.Query("page"), total, bc.pageSize)
	if err != nil {
		respondError(c, http.StatusNotFound, MsgInvalidPage, errorWhile(msgActionListing))
		return
	}

	list, total, err := bc.store.List(page.Limit(), page.Offset())
	if err != nil {
		respondInternalError(c, err, msgActionListing)
		return
	}
	page.Total = total

	resp := serializers.PageResponse{
		Count:   total,
		Results: serializers.NewBookResponses(list),
	}
	if page.HasNext() {
		resp.Next = pageURL(c.Request, page.Next())
	}
	if page.HasPrevious() {
		resp.Previous = pageURL(c.Request, page.Previous())
	}
	respondData(c, http.StatusOK, resp, MsgBooksFetched)
}

// Retrieve handles GET /rest/book/:lookup/.
func (bc *BooksAPIController) Retrieve(c *gin.Context) {
	l, ok := bc.lookup(c, msgActionFetching)
	if !ok {
		return
	}

	book, err := bc.store.Get(l)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondError(c, http.StatusNotFound, MsgBookNotFound, errorWhile(msgActionFetching))
			return
		}
		respondInternalError(c, err, msgActionFetching)
		return
	}
	respondData(c, http.StatusOK, serializers.NewBookResponse(book), MsgBookFetched)
}

// Update handles PUT /rest/book/:lookup/. The whole record is validated.
func (bc *BooksAPIController) Update(c *gin.Context) {
	l, ok := bc.lookup(c, msgActionUpdating)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, err, errorWhile(msgActionUpdating))
		return
	}

	var req serializers.BookRequest
	if err := bc.decodeBook(body, &req); err != nil {
		bc.respondWriteError(c, err, req.Title, msgActionUpdating)
		return
	}

	book, err := bc.store.Update(l, func(b *entities.Book) error {
		req.Apply(b)
		return nil
	})
	if err != nil {
		bc.respondWriteError(c, err, req.Title, msgActionUpdating)
		return
	}

	bc.logBook(c, entities.AuditEventUpdate, book)
	respondData(c, http.StatusOK, serializers.NewBookResponse(book), book.Title+bookUpdatedSuffix)
}

// PartialUpdate handles PATCH /rest/book/:lookup/. Fields absent from the
// body keep their stored values; the merged record is validated.
func (bc *BooksAPIController) PartialUpdate(c *gin.Context) {
	l, ok := bc.lookup(c, msgActionUpdating)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, err, errorWhile(msgActionUpdating))
		return
	}

	var title string
	book, err := bc.store.Update(l, func(b *entities.Book) error {
		req := serializers.NewBookRequest(b)
		err := bc.decodeBook(body, &req)
		title = req.Title
		if err != nil {
			return err
		}
		req.Apply(b)
		return nil
	})
	if err != nil {
		bc.respondWriteError(c, err, title, msgActionUpdating)
		return
	}

	bc.logBook(c, entities.AuditEventUpdate, book)
	respondData(c, http.StatusOK, serializers.NewBookResponse(book), book.Title+bookUpdatedSuffix)
}

// Destroy handles DELETE /rest/book/:lookup/.
func (bc *BooksAPIController) Destroy(c *gin.Context) {
	l, ok := bc.lookup(c, msgActionDeleting)
	if !ok {
		return
	}

	book, err := bc.store.Delete(l)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			respondError(c, http.StatusNotFound, MsgBookNotFound, errorWhile(msgActionDeleting))
			return
		}
		respondInternalError(c, err, msgActionDeleting)
		return
	}

	bc.logBook(c, entities.AuditEventDelete, book)
	respondData(c, http.StatusOK, gin.H{}, MsgBookDeleted)
}
