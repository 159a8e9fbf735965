package pkg

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"
	"gorm.io/gorm"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/listing"
)

const (
	// MaxPerPage caps per_page on every list endpoint.
	MaxPerPage = 50

	searchParam = "q"
	tagParam    = "tag"
)

// ParsePage reads a 1-based page number from key. Missing or invalid values
// are page 1.
func ParsePage(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageRequest reads page, per_page and the remote filter keys a
// collection accepts. per_page falls back to defaultPerPage and is capped at
// MaxPerPage. Only keys listed in allowed are forwarded, and only when the
// query carries them.
func ParsePageRequest(c *gin.Context, defaultPerPage int, allowed []string) domain.PageRequest {
	perPage, err := strconv.Atoi(c.Query("per_page"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, MaxPerPage)

	filter := make(map[string]string)
	for _, key := range allowed {
		if v, ok := c.GetQuery(key); ok {
			filter[key] = strings.TrimSpace(v)
		}
	}
	return domain.PageRequest{Page: ParsePage(c, "page"), PerPage: perPage, Filter: filter}
}

// ParseFilterState reads the client-side filter: ?q= is the name search and
// ?tag= the selected tag id. A non-numeric tag is ignored.
func ParseFilterState(c *gin.Context) listing.FilterState {
	f := listing.FilterState{SearchQuery: c.Query(searchParam)}
	if raw := c.Query(tagParam); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			f.SelectedTagID = &id
		}
	}
	return f
}

// PaginateQuery loads page req.Page of q: a COUNT for the total, then
// OFFSET/LIMIT in the given order. A page past the end yields the last page.
func PaginateQuery[T any](ctx context.Context, q *gorm.DB, req domain.PageRequest, order string) (domain.PageResult[T], error) {
	p, err := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](max(req.PerPage, 1)),
		pagination.WithItemTotalCallback[T](func(ctx context.Context) (int64, error) {
			var total int64
			err := q.Session(&gorm.Session{}).WithContext(ctx).Count(&total).Error
			return total, err
		}),
		pagination.WithSliceCallback(func(ctx context.Context, offset, limit int) ([]T, error) {
			tx := q.Session(&gorm.Session{}).WithContext(ctx)
			if order != "" {
				tx = tx.Order(order)
			}
			var items []T
			err := tx.Offset(offset).Limit(limit).Find(&items).Error
			return items, err
		}),
	).Paginate(ctx, max(req.Page, 1))
	if err != nil {
		return domain.PageResult[T]{}, err
	}
	return domain.FromPagination(p), nil
}
