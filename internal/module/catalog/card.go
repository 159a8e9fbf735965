package catalog

import (
	"net/url"
	"strconv"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/listing"
)

// Card is the display summary of any collection item, used by list pages and
// related lists so one partial renders them all.
type Card struct {
	Slug     string
	ID       int
	Name     string
	Summary  string
	Image    string
	Color    string
	Date     string
	Download string
	Labels   []string
	Tags     []domain.Tag
}

func projectCard(p domain.Project) Card {
	return Card{Slug: "projects", ID: p.ID, Name: p.Name, Summary: p.Description, Image: p.Image, Color: p.Color, Labels: p.Sectors, Tags: p.Tags}
}

func activityCard(a domain.Activity) Card {
	return Card{Slug: "activities", ID: a.ID, Name: a.Name, Summary: a.Description, Image: a.Image, Date: a.PublishingDate, Labels: a.Projects, Tags: a.Tags}
}

func statisticCard(s domain.Statistic) Card {
	return Card{Slug: "statistics", ID: s.ID, Name: s.Name, Summary: s.Description, Image: s.Image, Date: s.PublishingDate, Tags: s.Tags}
}

func reportCard(r domain.Report) Card {
	return Card{Slug: "reports", ID: r.ID, Name: r.Name, Summary: r.Description, Image: r.Image, Date: r.PublishingDate, Download: r.PDF, Tags: r.Tags}
}

func storyCard(s domain.SuccessStory) Card {
	return Card{Slug: "success-stories", ID: s.ID, Name: s.Name, Summary: s.Description, Image: s.Image, Date: s.PublishingDate, Labels: s.Sectors, Tags: s.Tags}
}

func centerCard(c domain.Center) Card {
	return Card{Slug: "centers", ID: c.ID, Name: c.Name, Summary: c.Address, Image: c.Image, Date: c.OpeningDate, Tags: c.Tags}
}

func sectorCard(s domain.Sector) Card {
	return Card{Slug: "sectors", ID: s.ID, Name: s.Name, Summary: s.Description, Image: s.Image, Color: s.Color}
}

func cards[T any](items []T, card func(T) Card) []Card {
	out := make([]Card, len(items))
	for i, it := range items {
		out[i] = card(it)
	}
	return out
}

// ListView is the data of a collection list page.
type ListView struct {
	Slug           string
	Cards          []Card
	Tags           []domain.Tag
	Filter         listing.FilterState
	CurrentPage    int
	TotalPages     int
	Total          int
	ShowPagination bool
	Window         []listing.PageLink

	path  string
	query url.Values
}

// Empty reports whether nothing is left to show after filtering.
func (v ListView) Empty() bool { return len(v.Cards) == 0 }

// TagSelected reports whether id is the active facet.
func (v ListView) TagSelected(id int) bool {
	return v.Filter.SelectedTagID != nil && *v.Filter.SelectedTagID == id
}

// Href links to page n, keeping every other query parameter.
func (v ListView) Href(n int) string {
	return pageHref(v.path, v.query, "page", n)
}

// RelatedList is one paginated list on a detail page, e.g. the
// projects of a sector. Its page number travels as ?<Key>_page=.
type RelatedList struct {
	Key            string
	Label          string
	Cards          []Card
	CurrentPage    int
	TotalPages     int
	ShowPagination bool
	Window         []listing.PageLink

	path  string
	query url.Values
}

// Href links to page n of this list, leaving the other lists where they are.
func (l RelatedList) Href(n int) string {
	return pageHref(l.path, l.query, l.Key+"_page", n) + "#" + l.Key
}

func pageHref(path string, query url.Values, key string, n int) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	if n <= 1 {
		q.Del(key)
	} else {
		q.Set(key, strconv.Itoa(n))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
