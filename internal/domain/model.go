package domain

import "time"

// BaseModel is the common base struct for persisted models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Supported locales. Arabic is the site default.
const (
	LocaleAR = "ar"
	LocaleEN = "en"
)

// Tag is a facet label shared between items of one collection.
// Identity is ID; Name is what the facet filter compares.
type Tag struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Listable is implemented by every record kind a paginated collection returns.
type Listable interface {
	ItemID() int
	ItemName() string
	ItemTags() []Tag
}

// PageResult is one normalized page of a remote collection.
//
// Invariants: len(Items) <= the requested per-page size, 1 <= CurrentPage <= TotalPages
// and Total >= 0.
type PageResult[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Total       int `json:"total"`
}

// EmptyPage returns the fail-soft sentinel page.
func EmptyPage[T any]() PageResult[T] {
	return PageResult[T]{Items: []T{}, CurrentPage: 1, TotalPages: 1, Total: 0}
}

// IsEmpty reports whether the page holds no items.
func (p PageResult[T]) IsEmpty() bool {
	return len(p.Items) == 0
}

// HasPrevious reports whether a page precedes the current one.
func (p PageResult[T]) HasPrevious() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a page follows the current one.
func (p PageResult[T]) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// PageRequest holds pagination and remote filter parameters parsed from a query string.
type PageRequest struct {
	Page    int
	PerPage int
	Filter  map[string]string
}
