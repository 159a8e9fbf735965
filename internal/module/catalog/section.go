package catalog

import (
	"context"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/listing"
	"github.com/mosaic-hrd/website/internal/pkg"
)

// section binds one collection to its card, the query keys forwarded to the
// content API and the related lists of its detail page.
type section interface {
	slug() string
	perPage() int
	remoteKeys() []string
	relations() []relation
	view(ctx context.Context, cl *content.Client, req domain.PageRequest, f listing.FilterState, locale string) ListView
	page(ctx context.Context, cl *content.Client, req domain.PageRequest, f listing.FilterState, locale string) pkg.PageData[any]
	detail(ctx context.Context, cl *content.Client, id int, locale string) (any, []domain.Tag, bool)
}

// paged is a section over a paginated collection.
type paged[T domain.Listable] struct {
	col     content.Collection
	card    func(T) Card
	keys    []string
	related []relation
}

func (s paged[T]) slug() string { return s.col.Slug }
func (s paged[T]) perPage() int { return s.col.DefaultPerPage }
func (s paged[T]) remoteKeys() []string { return s.keys }
func (s paged[T]) relations() []relation { return s.related }

// view loads one page through a controller and narrows it with the facet
// filter. The controller is detached once the snapshot is taken.
func (s paged[T]) view(ctx context.Context, cl *content.Client, req domain.PageRequest, f listing.FilterState, locale string) ListView {
	ctl := listing.NewController(listing.Remote[T](cl, s.col, req.PerPage, content.Filters(req.Filter), locale))
	defer ctl.Detach()

	ctl.Load(ctx, req.Page)
	ctl.SetFilter(f)
	snap := ctl.Snapshot()
	return ListView{
		Slug:           s.col.Slug,
		Cards:          cards(snap.Visible(), s.card),
		Tags:           snap.Tags,
		Filter:         f,
		CurrentPage:    snap.Result.CurrentPage,
		TotalPages:     snap.Result.TotalPages,
		Total:          snap.Result.Total,
		ShowPagination: snap.ShowPagination(),
		Window:         snap.Window(),
	}
}

func (s paged[T]) page(ctx context.Context, cl *content.Client, req domain.PageRequest, f listing.FilterState, locale string) pkg.PageData[any] {
	result, tags := content.FetchPage[T](ctx, cl, s.col, req.Page, req.PerPage, content.Filters(req.Filter), locale)
	return pkg.PageData[any]{
		Items:       toAny(listing.Apply(f, result.Items, tags)),
		Tags:        tags,
		CurrentPage: result.CurrentPage,
		TotalPages:  result.TotalPages,
		Total:       result.Total,
	}
}

func (s paged[T]) detail(ctx context.Context, cl *content.Client, id int, locale string) (any, []domain.Tag, bool) {
	item, tags := content.FetchByID[T](ctx, cl, s.col, id, locale)
	if item == nil {
		return nil, tags, false
	}
	return item, tags, true
}

// sectors is the one collection whose list endpoint is not paginated: the
// whole list is a single page and ?q= doubles as the remote search.
type sectors struct {
	related []relation
}

func (sectors) slug() string { return content.Sectors.Slug }
func (sectors) perPage() int { return 0 }
func (sectors) remoteKeys() []string { return nil }
func (s sectors) relations() []relation { return s.related }

func (sectors) fetch(ctx context.Context, cl *content.Client, f listing.FilterState, locale string) []domain.Sector {
	items := content.FetchList[domain.Sector](ctx, cl, content.SectorList, content.Filters{"search": f.SearchQuery}, locale)
	return listing.Filter(items, f.SearchQuery, nil)
}

func (s sectors) view(ctx context.Context, cl *content.Client, _ domain.PageRequest, f listing.FilterState, locale string) ListView {
	items := s.fetch(ctx, cl, f, locale)
	return ListView{
		Slug:        content.Sectors.Slug,
		Cards:       cards(items, sectorCard),
		Tags:        []domain.Tag{},
		Filter:      f,
		CurrentPage: 1,
		TotalPages:  1,
		Total:       len(items),
		Window:      listing.Window(1, 1),
	}
}

func (s sectors) page(ctx context.Context, cl *content.Client, _ domain.PageRequest, f listing.FilterState, locale string) pkg.PageData[any] {
	items := s.fetch(ctx, cl, f, locale)
	return pkg.PageData[any]{Items: toAny(items), Tags: []domain.Tag{}, CurrentPage: 1, TotalPages: 1, Total: len(items)}
}

func (sectors) detail(ctx context.Context, cl *content.Client, id int, locale string) (any, []domain.Tag, bool) {
	s := content.FetchSector(ctx, cl, id, locale)
	if s == nil {
		return nil, []domain.Tag{}, false
	}
	return s, []domain.Tag{}, true
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// storiesByRelation reads success stories through the plain list path, which
// is the one that honours project_id and sector_id.
var storiesByRelation = func() content.Collection {
	c := content.SuccessStories
	c.ListPath = "/success-stories"
	return c
}()

// sections builds the registry in menu order.
func sections() map[string]section {
	return map[string]section{
		content.Projects.Slug: paged[domain.Project]{
			col:  content.Projects,
			card: projectCard,
			keys: []string{"search", "center_id", "tag_id", "sector_id"},
			related: []relation{
				pagedRelation(storiesByRelation, "project_id", "common.related_stories", 4, storyCard),
				pagedRelation(content.Activities, "project_id", "common.related_activities", 4, activityCard),
				pagedRelation(content.Centers, "project_id", "common.related_centers", 4, centerCard),
			},
		},
		content.Activities.Slug: paged[domain.Activity]{
			col:  content.Activities,
			card: activityCard,
			keys: []string{"search", "center_id", "tag_id", "project_id", "sector_id"},
		},
		content.SuccessStories.Slug: paged[domain.SuccessStory]{
			col:  content.SuccessStories,
			card: storyCard,
			keys: []string{"search", "project_id", "sector_id", "tag_id"},
		},
		content.Statistics.Slug: paged[domain.Statistic]{
			col:     content.Statistics,
			card:    statisticCard,
			keys:    []string{"search", "tag_id"},
			related: []relation{latestStatistics(5)},
		},
		content.Reports.Slug: paged[domain.Report]{
			col:  content.Reports,
			card: reportCard,
			keys: []string{"search", "tag_id"},
		},
		content.Centers.Slug: paged[domain.Center]{
			col:  content.Centers,
			card: centerCard,
			keys: []string{"project_id", "sector_id"},
			related: []relation{
				pagedRelation(content.Projects, "center_id", "common.related_projects", 4, projectCard),
				pagedRelation(content.Activities, "center_id", "common.related_activities", 4, activityCard),
				otherCenters(4),
			},
		},
		content.Sectors.Slug: sectors{
			related: []relation{
				pagedRelation(content.Projects, "sector_id", "common.related_projects", 4, projectCard),
				pagedRelation(storiesByRelation, "sector_id", "common.related_stories", 4, storyCard),
				pagedRelation(content.Centers, "sector_id", "common.related_centers", 100, centerCard),
				pagedRelation(content.Activities, "sector_id", "common.related_activities", 4, activityCard),
			},
		},
	}
}

// menu is the order collections are listed in.
func menu() []string {
	return append(content.Slugs(), content.Sectors.Slug)
}
