package access

import (
	"fmt"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

// PermissionStore is the storage the checker reads from.
type PermissionStore interface {
	PermissionFinder
	UserHasPermission(userID, permissionID uint) (bool, error)
}

// Checker evaluates a user's effective permissions: direct grants plus
// the grants of every group the user belongs to.
type Checker struct {
	registry *Registry
	store    PermissionStore
}

func NewChecker(registry *Registry, store PermissionStore) *Checker {
	return &Checker{registry: registry, store: store}
}

// CheckMethod is Can with the action derived from an HTTP method.
func (c *Checker) CheckMethod(user *entities.User, resource Resource, method string) error {
	action, ok := ActionForMethod(method)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	return c.Can(user, resource, action)
}

// Can returns nil when user may perform action on resource,
// ErrPermissionDenied when it may not and ErrPermissionLookup when the
// permission itself cannot be resolved.
func (c *Checker) Can(user *entities.User, resource Resource, action Action) error {
	if user == nil || !user.IsActive {
		return ErrPermissionDenied
	}
	if user.IsSuperuser {
		return nil
	}

	entry, ok := c.registry.Lookup(resource, action)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPermissionLookup, Codename(resource, action))
	}

	perm, err := c.store.GetByCodename(entry.Codename)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPermissionLookup, entry.Codename, err)
	}

	allowed, err := c.store.UserHasPermission(user.ID, perm.ID)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", entry.Codename, err)
	}
	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}
