package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mosaic-hrd/website/internal/domain"
)

// FetchByID returns one entity of col and its related tags. Invalid ids and
// failures yield (nil, empty).
func FetchByID[T any](ctx context.Context, c *Client, col Collection, id int, locale string) (*T, []domain.Tag) {
	item, tags, err := fetchByID[T](ctx, c, col, id, locale)
	if err != nil {
		c.logFailure(ctx, col.Slug, locale, err)
		return nil, []domain.Tag{}
	}
	return item, tags
}

func fetchByID[T any](ctx context.Context, c *Client, col Collection, id int, locale string) (*T, []domain.Tag, error) {
	if id < 1 {
		return nil, []domain.Tag{}, nil
	}
	data, err := c.get(ctx, col.Slug, col.DetailPath+"/"+strconv.Itoa(id), nil, locale)
	if err != nil {
		return nil, nil, err
	}
	return decodeDetail[T](col, data)
}

func decodeDetail[T any](col Collection, data json.RawMessage) (*T, []domain.Tag, error) {
	tags := []domain.Tag{}
	if isNull(data) {
		return nil, tags, nil
	}

	raw := data
	if isArray(data) {
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, nil, fmt.Errorf("decode %s detail: %w", col.Slug, err)
		}
		if len(list) == 0 {
			return nil, tags, nil
		}
		raw = list[0]
	} else {
		obj := object(data)
		if col.DetailTagKey != "" {
			if t, ok := obj[col.DetailTagKey]; ok && isArray(t) {
				if err := json.Unmarshal(t, &tags); err != nil {
					return nil, nil, fmt.Errorf("decode %s: %w", col.DetailTagKey, err)
				}
			}
		}
		if col.DetailKey != "" {
			wrapped, ok := obj[col.DetailKey]
			switch {
			case ok:
				raw = wrapped
			case !col.DetailInline:
				return nil, tags, nil
			}
		}
	}

	if isNull(raw) {
		return nil, tags, nil
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, nil, fmt.Errorf("decode %s detail: %w", col.Slug, err)
	}
	return &item, tags, nil
}

// FetchSector returns one sector. When the detail endpoint fails the sector
// list is searched instead.
func FetchSector(ctx context.Context, c *Client, id int, locale string) *domain.Sector {
	item, _, err := fetchByID[domain.Sector](ctx, c, Sectors, id, locale)
	if err == nil {
		return item
	}
	c.logFailure(ctx, Sectors.Slug, locale, err)

	for _, s := range FetchList[domain.Sector](ctx, c, SectorList, nil, locale) {
		if s.ID == id {
			found := s
			return &found
		}
	}
	return nil
}

// FetchList returns every item of a non-paginated endpoint, or an empty slice
// on failure.
func FetchList[T any](ctx context.Context, c *Client, ep Endpoint, filters Filters, locale string) []T {
	q := url.Values{}
	for _, k := range ep.AlwaysSend {
		q.Set(k, "")
	}
	for k, v := range filters {
		q.Set(k, v)
	}

	data, err := c.get(ctx, ep.Name, ep.Path, q, locale)
	if err != nil {
		c.logFailure(ctx, ep.Name, locale, err)
		return []T{}
	}

	raw := data
	if ep.ItemKey != "" {
		raw = object(data)[ep.ItemKey]
	}
	if !isArray(raw) {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logFailure(ctx, ep.Name, locale, fmt.Errorf("decode %s: %w", ep.Name, err))
		return []T{}
	}
	return items
}

// FetchHomeStatistics returns the home page counters and video link.
func FetchHomeStatistics(ctx context.Context, c *Client, locale string) domain.HomeStatistics {
	empty := domain.HomeStatistics{Statistics: []domain.HeadlineStatistic{}}

	data, err := c.get(ctx, "home-statistics", homeStatsPath, nil, locale)
	if err != nil {
		c.logFailure(ctx, "home-statistics", locale, err)
		return empty
	}
	var out domain.HomeStatistics
	if isNull(data) {
		return empty
	}
	if err := json.Unmarshal(data, &out); err != nil {
		c.logFailure(ctx, "home-statistics", locale, fmt.Errorf("decode home statistics: %w", err))
		return empty
	}
	if out.Statistics == nil {
		out.Statistics = []domain.HeadlineStatistic{}
	}
	return out
}
