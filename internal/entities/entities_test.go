package entities

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "entities.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Permission{}, &Group{}, &User{}, &Book{}, &AuthToken{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func TestUserType_GroupName(t *testing.T) {
	assert.Equal(t, "Admin", UserTypeAdmin.GroupName())
	assert.Equal(t, "Student", UserTypeStudent.GroupName())
	assert.Equal(t, "", UserType("").GroupName())
}

func TestUserType_Valid(t *testing.T) {
	assert.True(t, UserTypeAdmin.Valid())
	assert.True(t, UserTypeStudent.Valid())
	assert.False(t, UserType("teacher").Valid())
}

func TestBookCategory_Valid(t *testing.T) {
	for _, c := range BookCategories {
		assert.True(t, c.Valid())
	}
	assert.False(t, BookCategory("poetry").Valid())
	assert.False(t, BookCategory("Story").Valid())
}

func TestUser_AdminBecomesSuperuserAndJoinsGroup(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&Group{Name: "Admin"}).Error)

	user := &User{Email: "admin@example.com", PasswordHash: "x", UserType: UserTypeAdmin}
	require.NoError(t, db.Create(user).Error)
	assert.True(t, user.IsSuperuser)

	var loaded User
	require.NoError(t, db.Preload("Groups").First(&loaded, user.ID).Error)
	assert.True(t, loaded.IsSuperuser)
	require.Len(t, loaded.Groups, 1)
	assert.Equal(t, "Admin", loaded.Groups[0].Name)
}

func TestUser_ResaveDoesNotDuplicateMembership(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&Group{Name: "Student"}).Error)

	user := &User{Email: "student@example.com", PasswordHash: "x", UserType: UserTypeStudent}
	require.NoError(t, db.Create(user).Error)
	assert.False(t, user.IsSuperuser)

	user.FirstName = "Changed"
	require.NoError(t, db.Save(user).Error)

	var count int64
	require.NoError(t, db.Table("user_groups").Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUser_MissingGroupRollsBack(t *testing.T) {
	db := setupTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&User{Email: "orphan@example.com", PasswordHash: "x", UserType: UserTypeStudent}).Error
	})
	require.ErrorIs(t, err, ErrGroupNotFound)

	var count int64
	require.NoError(t, db.Model(&User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBook_SlugDerivedFromTitle(t *testing.T) {
	db := setupTestDB(t)

	book := &Book{Title: "Dune Messiah", Category: CategoryStory, Slug: "client-value"}
	require.NoError(t, db.Create(book).Error)
	assert.Equal(t, "dune-messiah", book.Slug)

	book.Title = "Children of Dune"
	require.NoError(t, db.Save(book).Error)

	var loaded Book
	require.NoError(t, db.First(&loaded, book.ID).Error)
	assert.Equal(t, "children-of-dune", loaded.Slug)
}

func TestBook_EmptySlugRejected(t *testing.T) {
	db := setupTestDB(t)

	err := db.Create(&Book{Title: "!!!", Category: CategoryStory}).Error
	assert.ErrorIs(t, err, ErrEmptySlug)
}

func TestAuthToken_IsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, (&AuthToken{}).IsExpired(now))
	assert.True(t, (&AuthToken{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&AuthToken{ExpiresAt: &future}).IsExpired(now))
}
