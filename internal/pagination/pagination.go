// Package pagination computes page windows over a counted result set.
//
// Two resolution modes exist. The HTML list clamps any bad page number to
// the nearest valid page; the REST list rejects it.
package pagination

import (
	"errors"
	"strconv"
)

// ErrInvalidPage is returned by Strict for a non-numeric or out-of-range page.
var ErrInvalidPage = errors.New("invalid page")

type Page struct {
	Number   int
	Size     int
	Total    int64
	NumPages int
}

// numPages keeps one (empty) page for an empty result set.
func numPages(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

func newPage(number int, total int64, size int) Page {
	return Page{Number: number, Size: size, Total: total, NumPages: numPages(total, size)}
}

// Strict parses raw ("" means the first page) and fails when it is not a
// page that exists.
func Strict(raw string, total int64, size int) (Page, error) {
	if size <= 0 {
		size = 1
	}
	if raw == "" {
		return newPage(1, total, size), nil
	}
	if raw == "last" {
		return newPage(numPages(total, size), total, size), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > numPages(total, size) {
		return Page{}, ErrInvalidPage
	}
	return newPage(n, total, size), nil
}

// Clamp parses raw and falls back to the first page for garbage and the
// last page for numbers past the end.
func Clamp(raw string, total int64, size int) Page {
	if size <= 0 {
		size = 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		n = 1
	}
	if last := numPages(total, size); n > last {
		n = last
	}
	return newPage(n, total, size)
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

func (p Page) Limit() int { return p.Size }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) Next() int { return p.Number + 1 }

func (p Page) Previous() int { return p.Number - 1 }
