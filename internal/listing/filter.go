package listing

import (
	"strings"

	"github.com/mosaic-hrd/website/internal/domain"
)

// FilterState narrows the loaded page. The zero value filters nothing.
type FilterState struct {
	SearchQuery   string
	SelectedTagID *int
}

// Active reports whether any filter is applied.
func (f FilterState) Active() bool {
	return strings.TrimSpace(f.SearchQuery) != "" || f.SelectedTagID != nil
}

// Apply resolves f.SelectedTagID against facets and filters items. An id with
// no matching facet yields no items.
func Apply[T domain.Listable](f FilterState, items []T, facets []domain.Tag) []T {
	if f.SelectedTagID == nil {
		return Filter(items, f.SearchQuery, nil)
	}
	for _, t := range facets {
		if t.ID == *f.SelectedTagID {
			return Filter(items, f.SearchQuery, &t)
		}
	}
	return []T{}
}

// Filter keeps the items whose name contains query, ignoring case, and that
// carry a tag named like selected. Tags are compared by name, so distinct tags
// sharing a display name select the same items. A blank query or nil tag
// disables that half of the filter.
func Filter[T domain.Listable](items []T, query string, selected *domain.Tag) []T {
	needle := ""
	if strings.TrimSpace(query) != "" {
		needle = strings.ToLower(query)
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if selected != nil && !hasTagNamed(it.ItemTags(), selected.Name) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(it.ItemName()), needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func hasTagNamed(tags []domain.Tag, name string) bool {
	for _, t := range tags {
		if t.Name == name {
			return true
		}
	}
	return false
}
