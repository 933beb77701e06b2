// Package access decides whether a user may perform an action on a
// resource.
//
// Every {resource, action} pair the application checks is enumerated in a
// Registry. The registry is validated against the permissions table at
// start-up, so a missing row is reported before the first request instead
// of surfacing as a failed check.
//
// HTTP methods map to actions:
//
//	GET, HEAD, OPTIONS -> view
//	POST               -> add
//	PUT, PATCH         -> change
//	DELETE             -> delete
package access

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

type Action string

const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionDelete Action = "delete"
)

// Actions lists every action a resource supports.
var Actions = []Action{ActionAdd, ActionChange, ActionDelete, ActionView}

type Resource string

const (
	ResourceBook Resource = "book"
	ResourceUser Resource = "user"
)

var (
	// ErrPermissionDenied means the user lacks the required permission.
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
	// ErrPermissionLookup means no permission row exists for a required
	// codename. It is a server fault, never an implicit allow.
	ErrPermissionLookup = errors.New("permission lookup failed")
	// ErrUnsupportedMethod means the HTTP method has no matching action.
	ErrUnsupportedMethod = errors.New("method has no permission mapping")
)

// ActionForMethod maps an HTTP method to the action it requires.
func ActionForMethod(method string) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionView, true
	case http.MethodPost:
		return ActionAdd, true
	case http.MethodPut, http.MethodPatch:
		return ActionChange, true
	case http.MethodDelete:
		return ActionDelete, true
	}
	return "", false
}

// Codename builds the permission codename, e.g. "view_book".
func Codename(resource Resource, action Action) string {
	return string(action) + "_" + string(resource)
}

// Entry is one permission the application relies on.
type Entry struct {
	Resource Resource
	Action   Action
	Codename string
	Name     string
}

// Permission converts the entry into its database row.
func (e Entry) Permission() entities.Permission {
	return entities.Permission{
		Resource: string(e.Resource),
		Action:   string(e.Action),
		Codename: e.Codename,
		Name:     e.Name,
	}
}

type key struct {
	resource Resource
	action   Action
}

// Registry is the fixed set of permissions the application checks.
type Registry struct {
	entries map[key]Entry
}

// NewRegistry enumerates every action for each resource.
func NewRegistry(resources ...Resource) *Registry {
	r := &Registry{entries: make(map[key]Entry)}
	for _, res := range resources {
		for _, act := range Actions {
			r.entries[key{res, act}] = Entry{
				Resource: res,
				Action:   act,
				Codename: Codename(res, act),
				Name:     fmt.Sprintf("Can %s %s", act, res),
			}
		}
	}
	return r
}

// DefaultRegistry covers the resources served by the application.
func DefaultRegistry() *Registry {
	return NewRegistry(ResourceBook, ResourceUser)
}

// Lookup returns the entry for a resource and action.
func (r *Registry) Lookup(resource Resource, action Action) (Entry, bool) {
	e, ok := r.entries[key{resource, action}]
	return e, ok
}

// Entries returns all entries sorted by codename.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codename < out[j].Codename })
	return out
}

// PermissionFinder resolves a codename to its stored permission.
type PermissionFinder interface {
	GetByCodename(codename string) (*entities.Permission, error)
}

// Validate checks that every entry has a stored permission.
func (r *Registry) Validate(store PermissionFinder) error {
	var missing []string
	for _, e := range r.Entries() {
		p, err := store.GetByCodename(e.Codename)
		if err != nil || p == nil {
			missing = append(missing, e.Codename)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrPermissionLookup, missing)
	}
	return nil
}
