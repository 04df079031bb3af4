package domain

import (
	"fmt"
	"math"
)

// Pagination bounds.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageRequest selects one window of a listing.
type PageRequest struct {
	Page          int
	PerPage       int
	PublishedOnly bool
}

// DefaultPageRequest returns the first page with the default size, published articles only.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: DefaultPage, PerPage: DefaultPerPage, PublishedOnly: true}
}

// Offset returns the number of rows skipped before this page.
// It is only meaningful for a request that passed Validate.
func (r PageRequest) Offset() int64 {
	return int64(r.Page-1) * int64(r.PerPage)
}

// MaxPage returns the largest page whose offset still fits in a bigint.
func MaxPage(perPage int) int64 {
	if perPage < 1 {
		return math.MaxInt64
	}
	return math.MaxInt64/int64(perPage) + 1
}

// Validate checks that page is at least 1, per_page is within [1, MaxPerPage]
// and the resulting offset fits in a bigint.
func (r PageRequest) Validate() error {
	if r.Page < 1 {
		return NewValidationError("page", "must be at least 1")
	}
	if r.PerPage < 1 || r.PerPage > MaxPerPage {
		return NewValidationError("per_page", "must be between 1 and 100")
	}
	if maxPage := MaxPage(r.PerPage); int64(r.Page) > maxPage {
		return NewValidationError("page", fmt.Sprintf("must be at most %d", maxPage))
	}
	return nil
}

// Page is one window of a listing together with its totals.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
	Pages   int
}

// NewPage builds a Page and computes its page count.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Pages:   PageCount(total, req.PerPage),
	}
}

// PageCount returns ceil(total/perPage), never less than 1.
func PageCount(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	pages := (total + int64(perPage) - 1) / int64(perPage)
	return int(pages)
}
