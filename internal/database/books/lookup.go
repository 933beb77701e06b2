package books

import (
	"strconv"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/utils"
)

type lookupKind int

const (
	lookupByID lookupKind = iota + 1
	lookupBySlugOrTitle
	lookupBySlug
)

// Lookup identifies a single book. Build one with ByID, BySlugOrTitle,
// BySlug or ParseLookup; the zero value matches nothing.
type Lookup struct {
	kind lookupKind
	id   uint
	text string
}

func ByID(id uint) Lookup { return Lookup{kind: lookupByID, id: id} }

func BySlugOrTitle(s string) Lookup { return Lookup{kind: lookupBySlugOrTitle, text: s} }

// BySlug matches the slug only, compared in lower case.
func BySlug(slug string) Lookup {
	return Lookup{kind: lookupBySlug, text: strings.ToLower(slug)}
}

// ParseLookup resolves a REST path key. All-digit keys are ids, anything
// else is matched against title or slug. A purely numeric title can
// therefore only be reached by id.
func ParseLookup(raw string) (Lookup, error) {
	if utils.IsDigits(raw) {
		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			// Too large for an id, so no row can match.
			return Lookup{}, ErrBookNotFound
		}
		return ByID(uint(id)), nil
	}
	return BySlugOrTitle(raw), nil
}

// IsID reports whether the lookup targets a primary key.
func (l Lookup) IsID() bool { return l.kind == lookupByID }

func (l Lookup) String() string {
	switch l.kind {
	case lookupByID:
		return "id=" + strconv.FormatUint(uint64(l.id), 10)
	case lookupBySlugOrTitle:
		return "title|slug=" + l.text
	case lookupBySlug:
		return "slug=" + l.text
	}
	return "none"
}
