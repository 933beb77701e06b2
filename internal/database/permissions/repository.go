// Package permissions provides database operations for groups and
// permissions, the primitives behind the access checker.
package permissions

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

var (
	ErrPermissionNotFound = errors.New("permission not found")
	ErrGroupNotFound      = entities.ErrGroupNotFound
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsurePermission returns the permission with codename, creating it when
// missing.
func (r *Repository) EnsurePermission(p entities.Permission) (*entities.Permission, error) {
	var existing entities.Permission
	err := r.db.Where("codename = ?", p.Codename).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := r.db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create permission %s: %w", p.Codename, err)
	}
	return &p, nil
}

// GetByCodename retrieves a permission by codename.
func (r *Repository) GetByCodename(codename string) (*entities.Permission, error) {
	var p entities.Permission
	err := r.db.Where("codename = ?", codename).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPermissionNotFound, codename)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPermissions returns all permissions ordered by codename.
func (r *Repository) ListPermissions() ([]entities.Permission, error) {
	var perms []entities.Permission
	err := r.db.Order("codename ASC").Find(&perms).Error
	return perms, err
}

// EnsureGroup creates the group when missing and sets its permissions to
// exactly perms.
func (r *Repository) EnsureGroup(name string, perms []entities.Permission) (*entities.Group, bool, error) {
	var group entities.Group
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			group = entities.Group{Name: name}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			created = true
		} else if err != nil {
			return err
		}
		return tx.Model(&group).Association("Permissions").Replace(perms)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure group %s: %w", name, err)
	}
	return &group, created, nil
}

// GetGroupByName retrieves a group with its permissions.
func (r *Repository) GetGroupByName(name string) (*entities.Group, error) {
	var group entities.Group
	err := r.db.Preload("Permissions").Where("name = ?", name).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GrantToUser attaches a permission to a user directly, outside any group.
func (r *Repository) GrantToUser(userID uint, permissionID uint) error {
	user := entities.User{ID: userID}
	perm := entities.Permission{ID: permissionID}
	return r.db.Session(&gorm.Session{SkipHooks: true}).Model(&user).Association("Permissions").Append(&perm)
}

// UserHasPermission reports whether the user holds the permission directly
// or through one of its groups.
func (r *Repository) UserHasPermission(userID, permissionID uint) (bool, error) {
	var direct int64
	err := r.db.Table("user_permissions").
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Count(&direct).Error
	if err != nil {
		return false, err
	}
	if direct > 0 {
		return true, nil
	}

	var viaGroup int64
	err = r.db.Table("user_groups").
		Joins("JOIN group_permissions ON group_permissions.group_id = user_groups.group_id").
		Where("user_groups.user_id = ? AND group_permissions.permission_id = ?", userID, permissionID).
		Count(&viaGroup).Error
	return viaGroup > 0, err
}

// UserPermissions returns the union of direct and group permissions.
func (r *Repository) UserPermissions(userID uint) ([]entities.Permission, error) {
	var perms []entities.Permission
	err := r.db.Model(&entities.Permission{}).
		Where("id IN (?) OR id IN (?)",
			r.db.Table("user_permissions").Select("permission_id").Where("user_id = ?", userID),
			r.db.Table("user_groups").
				Select("group_permissions.permission_id").
				Joins("JOIN group_permissions ON group_permissions.group_id = user_groups.group_id").
				Where("user_groups.user_id = ?", userID),
		).
		Order("codename ASC").
		Find(&perms).Error
	return perms, err
}
