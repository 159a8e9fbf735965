package domain

import (
	"context"

	"github.com/simp-lee/pagination"
)

// FromPagination maps a paginator result onto PageResult.
func FromPagination[T any](p *pagination.Pagination[T]) PageResult[T] {
	if p == nil {
		return EmptyPage[T]()
	}
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:       items,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Total:       int(p.TotalItems),
	}
}

// Paginate lays total items out perPage to a page and returns page, clamped
// to [1, last]. slice is called with the offset and limit of the clamped page.
func Paginate[T any](total, page, perPage int, slice func(offset, limit int) []T) PageResult[T] {
	p, err := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](max(perPage, 1)),
		pagination.WithKnownTotal[T](int64(max(total, 0))),
		pagination.WithSliceCallback(func(_ context.Context, offset, limit int) ([]T, error) {
			return slice(offset, limit), nil
		}),
	).Paginate(context.Background(), max(page, 1))
	if err != nil {
		return EmptyPage[T]()
	}
	return FromPagination(p)
}

// PageOf cuts page out of all. total may exceed len(all) when the source
// reports more items than it sent; it is never taken below len(all).
func PageOf[T any](all []T, total, page, perPage int) PageResult[T] {
	return Paginate(max(total, len(all)), page, perPage, func(offset, limit int) []T {
		lo := min(offset, len(all))
		return all[lo:min(lo+limit, len(all))]
	})
}
