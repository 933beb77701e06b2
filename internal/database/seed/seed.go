// Package seed creates the permissions, groups, users and books a fresh
// catalog starts with. Every step is idempotent.
package seed

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/permissions"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/utils"
)

// DefaultPassword is the password of the seeded accounts.
const DefaultPassword = "password"

const (
	defaultPhone   = "987654321"
	maxBookRetries = 10
)

// User describes a seeded account.
type User struct {
	Email     string
	FirstName string
	LastName  string
	Username  string // defaults to "<first> <last>"
	UserType  entities.UserType
}

// DefaultUsers are created when their email is absent.
var DefaultUsers = []User{
	{Email: "admin@mail.com", FirstName: "Admin", LastName: "Book", Username: "Book Admin", UserType: entities.UserTypeAdmin},
	{Email: "rupam@mail.com", FirstName: "Rupam", LastName: "Solanki", UserType: entities.UserTypeStudent},
	{Email: "james@mail.com", FirstName: "James", LastName: "Woods", UserType: entities.UserTypeStudent},
}

// Options tunes a Seeder.
type Options struct {
	BookCount  int // fill the catalog up to this many books
	BcryptCost int
	Users      []User
	FakerSeed  int64 // 0 picks a random seed
}

// Report counts what a run created.
type Report struct {
	Permissions int
	Groups      int
	Users       int
	Books       int
}

func (r Report) String() string {
	return fmt.Sprintf("created %d permissions, %d groups, %d users, %d books",
		r.Permissions, r.Groups, r.Users, r.Books)
}

type Seeder struct {
	db       *gorm.DB
	registry *access.Registry
	opts     Options
	faker    *gofakeit.Faker
}

func NewSeeder(db *gorm.DB, registry *access.Registry, opts Options) *Seeder {
	if opts.Users == nil {
		opts.Users = DefaultUsers
	}
	return &Seeder{
		db:       db,
		registry: registry,
		opts:     opts,
		faker:    gofakeit.New(opts.FakerSeed),
	}
}

// Run applies every seed step in order.
func (s *Seeder) Run() (Report, error) {
	var report Report

	perms, created, err := s.seedPermissions()
	if err != nil {
		return report, err
	}
	report.Permissions = created

	if report.Groups, err = s.seedGroups(perms); err != nil {
		return report, err
	}
	if report.Users, err = s.seedUsers(); err != nil {
		return report, err
	}
	if report.Books, err = s.seedBooks(); err != nil {
		return report, err
	}

	log.Printf("[seed] %s", report)
	return report, nil
}

func (s *Seeder) seedPermissions() ([]entities.Permission, int, error) {
	var perms []entities.Permission
	created := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := permissions.NewRepository(tx)
		for _, entry := range s.registry.Entries() {
			p, err := repo.GetByCodename(entry.Codename)
			if err == nil {
				perms = append(perms, *p)
				continue
			}
			if !errors.Is(err, permissions.ErrPermissionNotFound) {
				return err
			}

			if p, err = repo.EnsurePermission(entry.Permission()); err != nil {
				return err
			}
			perms = append(perms, *p)
			created++
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to seed permissions: %w", err)
	}
	return perms, created, nil
}

// seedGroups gives Admin every permission and the other groups view only.
func (s *Seeder) seedGroups(perms []entities.Permission) (int, error) {
	var viewOnly []entities.Permission
	for _, p := range perms {
		if p.Action == string(access.ActionView) {
			viewOnly = append(viewOnly, p)
		}
	}

	repo := permissions.NewRepository(s.db)
	created := 0
	for _, userType := range entities.UserTypes {
		granted := viewOnly
		if userType == entities.UserTypeAdmin {
			granted = perms
		}
		_, isNew, err := repo.EnsureGroup(userType.GroupName(), granted)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}

func (s *Seeder) seedUsers() (int, error) {
	created := 0
	for _, u := range s.opts.Users {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			repo := users.NewRepository(tx)
			exists, err := repo.ExistsByEmail(u.Email)
			if err != nil || exists {
				return err
			}

			hash, err := auth.HashPassword(DefaultPassword, s.opts.BcryptCost)
			if err != nil {
				return err
			}
			username := u.Username
			if username == "" {
				username = u.FirstName + " " + u.LastName
			}
			user := &entities.User{
				Email:        u.Email,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				Username:     username,
				PhoneNumber:  defaultPhone,
				PasswordHash: hash,
				UserType:     u.UserType,
				IsActive:     true,
				IsStaff:      true,
			}
			if err := repo.Create(user); err != nil {
				return err
			}
			created++
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}
	return created, nil
}

func (s *Seeder) seedBooks() (int, error) {
	repo := books.NewRepository(s.db)
	count, err := repo.Count()
	if err != nil {
		return 0, err
	}

	created := 0
	for missing := s.opts.BookCount - int(count); missing > 0; missing-- {
		if err := s.createRandomBook(repo); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) createRandomBook(repo *books.Repository) error {
	for attempt := 0; attempt < maxBookRetries; attempt++ {
		book := s.randomBook()
		err := repo.Create(book)
		if err == nil {
			return nil
		}
		if !errors.Is(err, books.ErrDuplicateSlug) && !errors.Is(err, entities.ErrEmptySlug) {
			return fmt.Errorf("failed to seed book: %w", err)
		}
	}
	return fmt.Errorf("failed to seed book: no unique title after %d attempts", maxBookRetries)
}

func (s *Seeder) randomBook() *entities.Book {
	title := strings.TrimSuffix(s.faker.Sentence(s.faker.Number(2, 5)), ".")
	return &entities.Book{
		Title:       utils.Truncate(title, entities.BookTitleMaxLength),
		Category:    entities.BookCategories[s.faker.Number(0, len(entities.BookCategories)-1)],
		Description: s.faker.Paragraph(2, 4, 12, " "),
		Author:      utils.Truncate(s.faker.Name(), entities.BookAuthorMaxLength),
	}
}
