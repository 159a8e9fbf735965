package listing

import (
	"context"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
)

// DefaultMaxPages caps CollectAll when the caller passes no limit.
const DefaultMaxPages = 10

// CollectAll loads page 1 and then every following page up to maxPages,
// returning the items deduplicated by id in page order.
func CollectAll[T domain.Listable](ctx context.Context, ctl *Controller[T], maxPages int) []T {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	seen := map[int]struct{}{}
	var out []T
	add := func(items []T) {
		for _, it := range items {
			if _, ok := seen[it.ItemID()]; ok {
				continue
			}
			seen[it.ItemID()] = struct{}{}
			out = append(out, it)
		}
	}

	snap := ctl.Load(ctx, 1)
	add(snap.Result.Items)
	for p := 2; p <= maxPages && p <= snap.Result.TotalPages; p++ {
		if ctx.Err() != nil {
			break
		}
		next, ok := ctl.RequestPage(ctx, p)
		if !ok || next.Result.CurrentPage != p {
			break
		}
		snap = next
		add(snap.Result.Items)
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// Remote adapts content.FetchPage to a Fetcher with fixed filters and locale.
func Remote[T domain.Listable](c *content.Client, col content.Collection, perPage int, filters content.Filters, locale string) Fetcher[T] {
	return func(ctx context.Context, page int) (domain.PageResult[T], []domain.Tag) {
		return content.FetchPage[T](ctx, c, col, page, perPage, filters, locale)
	}
}
