package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserType is the account kind chosen at registration. It also names the
// group a user is placed in.
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeStudent UserType = "student"
)

// UserTypes lists every accepted user type.
var UserTypes = []UserType{UserTypeAdmin, UserTypeStudent}

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	for _, known := range UserTypes {
		if t == known {
			return true
		}
	}
	return false
}

// GroupName returns the name of the group matching this user type
// ("admin" -> "Admin").
func (t UserType) GroupName() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ErrGroupNotFound is returned when a user is saved before the group for
// its user type has been seeded.
var ErrGroupNotFound = errors.New("group not found")

type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string       `gorm:"size:150" json:"username"`
	FirstName    string       `gorm:"size:150" json:"first_name"`
	LastName     string       `gorm:"size:150" json:"last_name"`
	PhoneNumber  string       `gorm:"size:20" json:"phone_number"`
	PasswordHash string       `gorm:"size:255;not null" json:"-"`
	UserType     UserType     `gorm:"size:20;not null" json:"user_type"`
	IsActive     bool         `json:"is_active"`
	IsStaff      bool         `json:"is_staff"`
	IsSuperuser  bool         `json:"is_superuser"`
	LastLogin    *time.Time   `json:"last_login,omitempty"`
	Groups       []Group      `gorm:"many2many:user_groups" json:"-"`
	Permissions  []Permission `gorm:"many2many:user_permissions" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FullName joins the first and last name the way registration derives a
// display username.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BeforeSave keeps the superuser flag in line with the user type.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.UserType == UserTypeAdmin {
		u.IsSuperuser = true
	}
	return nil
}

// AfterSave places the user in the group named after its user type. It
// runs in the same transaction as the save, so a missing group rolls the
// user row back too.
func (u *User) AfterSave(tx *gorm.DB) error {
	name := u.UserType.GroupName()
	if name == "" {
		return nil
	}

	db := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true})

	var group Group
	if err := db.Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, name)
		}
		return err
	}

	return db.Model(u).Association("Groups").Append(&group)
}
