package catalog

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/listing"
)

// relation is one list shown under a detail entity.
type relation struct {
	key   string
	label string
	load  func(ctx context.Context, cl *content.Client, parentID, page int, locale string) RelatedList
}

// pagedRelation lists col filtered by filterKey=<parent id>.
func pagedRelation[T domain.Listable](col content.Collection, filterKey, label string, perPage int, card func(T) Card) relation {
	return relation{
		key:   col.Slug,
		label: label,
		load: func(ctx context.Context, cl *content.Client, parentID, page int, locale string) RelatedList {
			filters := content.Filters{filterKey: strconv.Itoa(parentID)}
			result, _ := content.FetchPage[T](ctx, cl, col, page, perPage, filters, locale)
			return relatedFrom(result, card)
		},
	}
}

// otherCenters lists every center but the parent, paged locally since the
// center list endpoint returns everything at once.
func otherCenters(perPage int) relation {
	return relation{
		key:   "other-centers",
		label: "common.other_centers",
		load: func(ctx context.Context, cl *content.Client, parentID, page int, locale string) RelatedList {
			all := content.FetchList[domain.Center](ctx, cl, content.CenterList, nil, locale)
			others := make([]domain.Center, 0, len(all))
			for _, c := range all {
				if c.ID != parentID {
					others = append(others, c)
				}
			}
			return relatedFrom(domain.PageOf(others, len(others), page, perPage), centerCard)
		},
	}
}

// latestStatistics shows the newest n statistics other than the parent.
func latestStatistics(n int) relation {
	return relation{
		key:   "latest-statistics",
		label: "common.latest_statistics",
		load: func(ctx context.Context, cl *content.Client, parentID, _ int, locale string) RelatedList {
			all := content.FetchList[domain.Statistic](ctx, cl, content.LatestStats, nil, locale)
			latest := make([]domain.Statistic, 0, n)
			for _, s := range all {
				if len(latest) == n {
					break
				}
				if s.ID != parentID {
					latest = append(latest, s)
				}
			}
			return relatedFrom(domain.PageResult[domain.Statistic]{Items: latest, CurrentPage: 1, TotalPages: 1, Total: len(latest)}, statisticCard)
		},
	}
}

func relatedFrom[T any](result domain.PageResult[T], card func(T) Card) RelatedList {
	return RelatedList{
		Cards:          cards(result.Items, card),
		CurrentPage:    result.CurrentPage,
		TotalPages:     result.TotalPages,
		ShowPagination: result.TotalPages > 1,
		Window:         listing.Window(result.CurrentPage, result.TotalPages),
	}
}

// loadRelated fetches every relation concurrently. pages maps a relation key
// to its requested page; a missing key is page 1. Fetches never fail, so the
// group only propagates cancellation.
func loadRelated(ctx context.Context, cl *content.Client, rels []relation, parentID int, pages map[string]int, locale string) []RelatedList {
	out := make([]RelatedList, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	for i, rel := range rels {
		page := max(pages[rel.key], 1)
		g.Go(func() error {
			list := rel.load(gctx, cl, parentID, page, locale)
			list.Key = rel.key
			list.Label = rel.label
			out[i] = list
			return nil
		})
	}
	_ = g.Wait()
	return out
}
