package books

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "books.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func newBook(title string) *entities.Book {
	return &entities.Book{Title: title, Category: entities.CategoryStory, Author: "Herbert"}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)

	book := newBook("Dune")
	require.NoError(t, repo.Create(book))
	assert.NotZero(t, book.ID)
	assert.Equal(t, "dune", book.Slug)

	byID, err := repo.Get(ByID(book.ID))
	require.NoError(t, err)
	assert.Equal(t, "Dune", byID.Title)
	assert.Equal(t, entities.CategoryStory, byID.Category)
	assert.Equal(t, "Herbert", byID.Author)

	bySlug, err := repo.Get(BySlugOrTitle("dune"))
	require.NoError(t, err)
	assert.Equal(t, book.ID, bySlug.ID)

	byTitle, err := repo.Get(BySlugOrTitle("Dune"))
	require.NoError(t, err)
	assert.Equal(t, book.ID, byTitle.ID)

	htmlSlug, err := repo.Get(BySlug("DUNE"))
	require.NoError(t, err)
	assert.Equal(t, book.ID, htmlSlug.ID)
}

func TestRepository_CreateDuplicateSlug(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(newBook("Dune")))
	err := repo.Create(newBook("  DUNE "))
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRepository_GetNotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Get(ByID(42))
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = repo.Get(BySlugOrTitle("missing"))
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = repo.Get(Lookup{})
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_Update(t *testing.T) {
	repo := setupTestDB(t)

	book := newBook("Dune")
	require.NoError(t, repo.Create(book))

	updated, err := repo.Update(ByID(book.ID), func(b *entities.Book) error {
		b.Title = "Dune Messiah"
		b.Category = entities.CategoryHistorical
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dune-messiah", updated.Slug)

	_, err = repo.Get(BySlug("dune"))
	assert.ErrorIs(t, err, ErrBookNotFound)

	loaded, err := repo.Get(BySlug("dune-messiah"))
	require.NoError(t, err)
	assert.Equal(t, entities.CategoryHistorical, loaded.Category)
	assert.Equal(t, "Herbert", loaded.Author)
}

func TestRepository_UpdateKeepsOwnSlug(t *testing.T) {
	repo := setupTestDB(t)

	book := newBook("Dune")
	require.NoError(t, repo.Create(book))

	_, err := repo.Update(ByID(book.ID), func(b *entities.Book) error {
		b.Description = "Spice"
		return nil
	})
	assert.NoError(t, err)
}

func TestRepository_UpdateConflict(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(newBook("Dune")))
	other := newBook("Emma")
	require.NoError(t, repo.Create(other))

	_, err := repo.Update(ByID(other.ID), func(b *entities.Book) error {
		b.Title = "dune"
		return nil
	})
	assert.ErrorIs(t, err, ErrDuplicateSlug)

	loaded, err := repo.Get(ByID(other.ID))
	require.NoError(t, err)
	assert.Equal(t, "Emma", loaded.Title)
}

func TestRepository_UpdateNotFound(t *testing.T) {
	repo := setupTestDB(t)

	called := false
	_, err := repo.Update(ByID(7), func(*entities.Book) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.False(t, called)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupTestDB(t)

	book := newBook("Dune")
	require.NoError(t, repo.Create(book))

	deleted, err := repo.Delete(BySlugOrTitle("Dune"))
	require.NoError(t, err)
	assert.Equal(t, book.ID, deleted.ID)

	_, err = repo.Delete(ByID(book.ID))
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := setupTestDB(t)

	for _, title := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, repo.Create(newBook(title)))
	}

	page, total, err := repo.List(2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Title)
	assert.Equal(t, "D", page[1].Title)
}

func TestParseLookup(t *testing.T) {
	l, err := ParseLookup("12")
	require.NoError(t, err)
	assert.True(t, l.IsID())
	assert.Equal(t, "id=12", l.String())

	l, err = ParseLookup("dune")
	require.NoError(t, err)
	assert.False(t, l.IsID())
	assert.Equal(t, "title|slug=dune", l.String())

	l, err = ParseLookup("12abc")
	require.NoError(t, err)
	assert.False(t, l.IsID())

	_, err = ParseLookup(strings.Repeat("9", 40))
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_NumericTitleOnlyReachableByID(t *testing.T) {
	repo := setupTestDB(t)

	book := newBook("1984")
	require.NoError(t, repo.Create(book))

	l, err := ParseLookup("1984")
	require.NoError(t, err)
	_, err = repo.Get(l)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_TitleMatchingAnotherSlugIsRejected(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Create(newBook("Dune Messiah")))

	// A title equal to an existing slug slugifies to that same slug, so a
	// slug-or-title lookup can never match two books
	assert.ErrorIs(t, repo.Create(newBook("dune-messiah")), ErrDuplicateSlug)

	book, err := repo.Get(BySlugOrTitle("dune-messiah"))
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", book.Title)
}
