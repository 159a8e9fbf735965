package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/mosaic-hrd/website/internal/domain"
)

// Filters are collection query parameters such as search, center_id or tag_id.
// Keys present with empty values are sent as "key=".
type Filters map[string]string

// FetchPage returns one normalized page of col plus its facet tags.
//
// page < 1 is treated as 1 and perPage <= 0 as the collection default. Any
// failure yields domain.EmptyPage and an empty tag list.
func FetchPage[T domain.Listable](ctx context.Context, c *Client, col Collection, page, perPage int, filters Filters, locale string) (domain.PageResult[T], []domain.Tag) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = col.DefaultPerPage
		if perPage <= 0 {
			perPage = 10
		}
	}

	data, err := c.get(ctx, col.Slug, col.ListPath, pageQuery(col, page, perPage, filters), locale)
	if err != nil {
		c.logFailure(ctx, col.Slug, locale, err)
		return domain.EmptyPage[T](), []domain.Tag{}
	}

	result, tags, skipped, err := normalizePage[T](col, data, page, perPage)
	if err != nil {
		c.logFailure(ctx, col.Slug, locale, err)
		return domain.EmptyPage[T](), []domain.Tag{}
	}
	if skipped != nil {
		c.logger.WarnContext(ctx, "content tag list skipped",
			slog.String("collection", col.Slug),
			slog.String("locale", locale),
			slog.Any("error", skipped),
		)
	}
	return result, tags
}

func pageQuery(col Collection, page, perPage int, filters Filters) url.Values {
	q := url.Values{}
	for _, k := range col.AlwaysSend {
		q.Set(k, "")
	}
	for k, v := range filters {
		q.Set(k, v)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

// normalizePage turns a list response's data member into a PageResult.
// skipped reports tag lists that could not be decoded and were passed over.
func normalizePage[T domain.Listable](col Collection, data json.RawMessage, page, perPage int) (result domain.PageResult[T], tags []domain.Tag, skipped, err error) {
	obj := object(data)

	var all []T
	for _, key := range col.ItemKeys {
		raw, ok := obj[key]
		if !ok || !isArray(raw) {
			continue
		}
		if err := json.Unmarshal(raw, &all); err != nil {
			return result, nil, nil, fmt.Errorf("decode %s: %w", key, err)
		}
		break
	}
	if all == nil {
		all = []T{}
	}

	tags, skipped = extractTags(obj, col.TagKey, all)

	total, hasTotal := intField(obj, "total")
	current, hasCurrent := intField(obj, "current_page")
	pages, hasPages := intField(obj, "total_pages")

	// Backend ignored per_page and sent the whole collection.
	if len(all) > perPage {
		if !hasTotal {
			total = len(all)
		}
		return domain.PageOf(all, total, page, perPage), tags, skipped, nil
	}

	if !hasCurrent || current < 1 {
		current = 1
	}
	if !hasTotal || total < 0 {
		if hasPages && pages > 1 {
			// Only the page count is known.
			return domain.PageResult[T]{
				Items:       all,
				CurrentPage: min(current, pages),
				TotalPages:  pages,
				Total:       len(all),
			}, tags, skipped, nil
		}
		total = len(all)
	}
	// total_pages is recomputed from total so the two never disagree.
	return domain.Paginate(total, current, perPage, func(int, int) []T { return all }), tags, skipped, nil
}

// extractTags applies the facet fallback chain: the named list when non-empty,
// then the alternate "tags" list when present, then a first-seen dedupe of the
// tags embedded in items. A list that fails to decode is skipped and reported.
func extractTags[T domain.Listable](obj map[string]json.RawMessage, named string, items []T) ([]domain.Tag, error) {
	var skipped []error
	if named != "" {
		if raw, ok := obj[named]; ok && isArray(raw) {
			var tags []domain.Tag
			if err := json.Unmarshal(raw, &tags); err != nil {
				skipped = append(skipped, fmt.Errorf("decode %s: %w", named, err))
			} else if len(tags) > 0 {
				return dedupeTags(tags), nil
			}
		}
	}

	if raw, ok := obj[alternateTagKey]; ok && isArray(raw) {
		var tags []domain.Tag
		if err := json.Unmarshal(raw, &tags); err != nil {
			skipped = append(skipped, fmt.Errorf("decode %s: %w", alternateTagKey, err))
		} else {
			return dedupeTags(tags), errors.Join(skipped...)
		}
	}

	var embedded []domain.Tag
	for _, it := range items {
		embedded = append(embedded, it.ItemTags()...)
	}
	return dedupeTags(embedded), errors.Join(skipped...)
}

// dedupeTags keeps the first tag seen for each id.
func dedupeTags(tags []domain.Tag) []domain.Tag {
	out := make([]domain.Tag, 0, len(tags))
	seen := make(map[int]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// intField reads a non-null integer that may be encoded as a number or a numeric string.
func intField(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return 0, false
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return int(f), true
}
