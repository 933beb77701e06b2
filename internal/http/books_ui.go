package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/forms"
	"github.com/mrlokans/bookcatalog/internal/pagination"
	"github.com/mrlokans/bookcatalog/internal/validation"
)

// Flash messages set by the book pages.
const (
	MsgBookAddedFlash   = "Book added successfully!"
	MsgBookUpdatedFlash = "Book updated successfully!"
	MsgBookDeletedFlash = "Book deleted successfully!"
)

// BooksUIController serves the HTML catalog pages.
type BooksUIController struct {
	store     BookStore
	checker   *access.Checker
	validator *validation.Validator
	renderer  *PageRenderer
	sessions  *auth.SessionManager
	auditor   *audit.Service
	pageSize  int
}

func NewBooksUIController(
	store BookStore,
	checker *access.Checker,
	v *validation.Validator,
	renderer *PageRenderer,
	sessions *auth.SessionManager,
	auditor *audit.Service,
	pageSize int,
) *BooksUIController {
	return &BooksUIController{
		store:     store,
		checker:   checker,
		validator: v,
		renderer:  renderer,
		sessions:  sessions,
		auditor:   auditor,
		pageSize:  pageSize,
	}
}

// RegisterRoutes registers the catalog pages. The group must require a
// logged-in session.
func (uc *BooksUIController) RegisterRoutes(group gin.IRouter) {
	group.GET("/", uc.Index)
	group.POST("/", uc.Create)
	group.GET("/book/:slug", uc.Detail)
	group.GET("/bookEdit/:slug", uc.EditPage)
	group.POST("/bookEdit/:slug", uc.Edit)
	group.POST("/bookDelete/:slug", uc.Delete)
}

// can reports whether the current user holds action on books.
func (uc *BooksUIController) can(c *gin.Context, action access.Action) bool {
	return uc.checker.Can(auth.GetUser(c), access.ResourceBook, action) == nil
}

// authorize renders the error page and returns false when the current
// user may not perform action.
func (uc *BooksUIController) authorize(c *gin.Context, action access.Action) bool {
	err := uc.checker.Can(auth.GetUser(c), access.ResourceBook, action)
	if err == nil {
		return true
	}
	if errors.Is(err, access.ErrPermissionDenied) {
		uc.renderer.renderError(c, http.StatusForbidden, MsgPermissionDenied)
		return false
	}
	log.Printf("[access] permission check for %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	uc.renderer.renderError(c, http.StatusInternalServerError, "")
	return false
}

// renderStoreError draws the error page for a failed lookup or write.
func (uc *BooksUIController) renderStoreError(c *gin.Context, err error, title string) {
	switch {
	case errors.Is(err, books.ErrBookNotFound):
		uc.renderer.renderError(c, http.StatusNotFound, MsgBookNotFound)
	case errors.Is(err, books.ErrDuplicateSlug):
		uc.renderer.renderError(c, http.StatusBadRequest, title+bookConflictSuffix)
	case errors.Is(err, entities.ErrEmptySlug):
		uc.renderer.renderError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error (%s %s): %v", c.Request.Method, c.Request.URL.Path, err)
		uc.renderer.renderError(c, http.StatusInternalServerError, "")
	}
}

func (uc *BooksUIController) logBook(c *gin.Context, eventType entities.AuditEventType, book *entities.Book) {
	if uc.auditor != nil {
		uc.auditor.LogBook(auth.GetUserID(c), eventType, book, audit.RequestFromContext(c))
	}
}

// Index renders one page of the catalog with an empty create form. Bad
// page numbers fall back to the nearest real page.
func (uc *BooksUIController) Index(c *gin.Context) {
	if !uc.authorize(c, access.ActionView) {
		return
	}

	total, err := uc.store.Count()
	if err != nil {
		uc.renderStoreError(c, err, "")
		return
	}
	page := pagination.Clamp(c.Query("page"), total, uc.pageSize)

	list, _, err := uc.store.List(page.Limit(), page.Offset())
	if err != nil {
		uc.renderStoreError(c, err, "")
		return
	}

	uc.renderer.Render(c, http.StatusOK, "books.html", gin.H{
		"Title":  "Books",
		"Books":  list,
		"Page":   page,
		"Form":   forms.BookForm{Category: string(entities.CategoryStory)},
		"CanAdd": uc.can(c, access.ActionAdd),
	})
}

// Create handles the create form embedded in the list page.
func (uc *BooksUIController) Create(c *gin.Context) {
	if !uc.authorize(c, access.ActionAdd) {
		return
	}

	var form forms.BookForm
	if err := forms.Bind(c, uc.validator, &form); err != nil {
		uc.renderer.renderError(c, http.StatusBadRequest, err.Error())
		return
	}

	book := &entities.Book{}
	form.Apply(book)
	if err := uc.store.Create(book); err != nil {
		uc.renderStoreError(c, err, form.Title)
		return
	}

	uc.logBook(c, entities.AuditEventCreate, book)
	uc.sessions.PutFlash(c.Request, auth.FlashSuccess, MsgBookAddedFlash)
	c.Redirect(http.StatusSeeOther, "/")
}

// Detail renders a single book by slug.
func (uc *BooksUIController) Detail(c *gin.Context) {
	if !uc.authorize(c, access.ActionView) {
		return
	}

	book, err := uc.store.Get(books.BySlug(c.Param("slug")))
	if err != nil {
		uc.renderStoreError(c, err, "")
		return
	}

	uc.renderer.Render(c, http.StatusOK, "book.html", gin.H{
		"Title":     book.Title,
		"Book":      book,
		"CanChange": uc.can(c, access.ActionChange),
		"CanDelete": uc.can(c, access.ActionDelete),
	})
}

// EditPage renders the edit form pre-populated from the stored book.
func (uc *BooksUIController) EditPage(c *gin.Context) {
	if !uc.authorize(c, access.ActionChange) {
		return
	}

	book, err := uc.store.Get(books.BySlug(c.Param("slug")))
	if err != nil {
		uc.renderStoreError(c, err, "")
		return
	}

	uc.renderer.Render(c, http.StatusOK, "book_edit.html", gin.H{
		"Title": "Edit " + book.Title,
		"Book":  book,
		"Form":  forms.NewBookForm(book),
	})
}

// Edit saves the edit form and redirects to the book under its new slug.
func (uc *BooksUIController) Edit(c *gin.Context) {
	if !uc.authorize(c, access.ActionChange) {
		return
	}

	lookup := books.BySlug(c.Param("slug"))
	if _, err := uc.store.Get(lookup); err != nil {
		uc.renderStoreError(c, err, "")
		return
	}

	var form forms.BookForm
	if err := forms.Bind(c, uc.validator, &form); err != nil {
		uc.renderer.renderError(c, http.StatusBadRequest, err.Error())
		return
	}

	book, err := uc.store.Update(lookup, func(b *entities.Book) error {
		form.Apply(b)
		return nil
	})
	if err != nil {
		uc.renderStoreError(c, err, form.Title)
		return
	}

	uc.logBook(c, entities.AuditEventUpdate, book)
	uc.sessions.PutFlash(c.Request, auth.FlashSuccess, MsgBookUpdatedFlash)
	c.Redirect(http.StatusSeeOther, "/book/"+book.Slug)
}

// Delete removes a book and returns to the list.
func (uc *BooksUIController) Delete(c *gin.Context) {
	if !uc.authorize(c, access.ActionDelete) {
		return
	}

	book, err := uc.store.Delete(books.BySlug(c.Param("slug")))
	if err != nil {
		uc.renderStoreError(c, err, "")
		return
	}

	uc.logBook(c, entities.AuditEventDelete, book)
	uc.sessions.PutFlash(c.Request, auth.FlashSuccess, MsgBookDeletedFlash)
	c.Redirect(http.StatusSeeOther, "/")
}
