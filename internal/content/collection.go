package content

// Collection describes one paginated remote collection and the quirks of its
// response envelope.
type Collection struct {
	// Slug is the public route segment, e.g. "success-stories".
	Slug string
	// ListPath is the paginated endpoint relative to the base URL.
	ListPath string
	// DetailPath is the prefix of the detail endpoint; the id is appended.
	DetailPath string
	// ItemKeys are tried in order; the first array present wins.
	ItemKeys []string
	// TagKey is the named facet list on list responses.
	TagKey string
	// DetailKey wraps the entity in detail responses. Empty means data is the entity.
	DetailKey string
	// DetailInline allows data itself to be the entity when DetailKey is absent.
	DetailInline bool
	// DetailTagKey holds related tags on detail responses.
	DetailTagKey string
	// AlwaysSend filter keys go on the wire as "key=" when the caller leaves them unset.
	AlwaysSend []string
	// DefaultPerPage applies when the caller passes perPage <= 0.
	DefaultPerPage int
}

// alternateTagKey is checked after a collection's named tag list.
const alternateTagKey = "tags"

var (
	Projects = Collection{
		Slug:           "projects",
		ListPath:       "/projects/paginated",
		DetailPath:     "/projects",
		ItemKeys:       []string{"projects"},
		TagKey:         "project_tags",
		DetailKey:      "project",
		DetailInline:   true,
		DetailTagKey:   "project_tags",
		AlwaysSend:     []string{"search", "center_id", "tag_id"},
		DefaultPerPage: 4,
	}

	Activities = Collection{
		Slug:           "activities",
		ListPath:       "/activities/paginated",
		DetailPath:     "/activities",
		ItemKeys:       []string{"activities", "data"},
		TagKey:         "activity_tags",
		DetailKey:      "activity",
		DetailTagKey:   "activity_tags",
		AlwaysSend:     []string{"search", "center_id", "tag_id"},
		DefaultPerPage: 6,
	}

	Statistics = Collection{
		Slug:           "statistics",
		ListPath:       "/statistics/paginated",
		DetailPath:     "/statistics",
		ItemKeys:       []string{"statistics"},
		TagKey:         "statistic_tags",
		DetailKey:      "statistic",
		DetailTagKey:   "statistic_tags",
		DefaultPerPage: 10,
	}

	Reports = Collection{
		Slug:           "reports",
		ListPath:       "/reports/paginated",
		DetailPath:     "/reports",
		ItemKeys:       []string{"reports"},
		TagKey:         "report_tags",
		DetailKey:      "report",
		DetailTagKey:   "report_tags",
		DefaultPerPage: 6,
	}

	SuccessStories = Collection{
		Slug:           "success-stories",
		ListPath:       "/success-stories/paginated",
		DetailPath:     "/success-stories",
		ItemKeys:       []string{"success_stories", "centers"},
		TagKey:         "success_stories_tags",
		DetailKey:      "success_story",
		DetailTagKey:   "success_stories_tags",
		AlwaysSend:     []string{"search", "project_id", "sector_id", "tag_id"},
		DefaultPerPage: 6,
	}

	Centers = Collection{
		Slug:           "centers",
		ListPath:       "/centers/paginated",
		DetailPath:     "/centers",
		ItemKeys:       []string{"centers"},
		TagKey:         "center_tags",
		DetailKey:      "center",
		DetailTagKey:   "center_tags",
		AlwaysSend:     []string{"project_id", "sector_id"},
		DefaultPerPage: 4,
	}

	// Sectors is only used for detail lookups; its list endpoint is not paginated.
	Sectors = Collection{
		Slug:         "sectors",
		DetailPath:   "/sectors",
		DetailInline: true,
	}
)

var registry = map[string]Collection{
	Projects.Slug:       Projects,
	Activities.Slug:     Activities,
	Statistics.Slug:     Statistics,
	Reports.Slug:        Reports,
	SuccessStories.Slug: SuccessStories,
	Centers.Slug:        Centers,
}

// Lookup returns the paginated collection registered under slug.
func Lookup(slug string) (Collection, bool) {
	c, ok := registry[slug]
	return c, ok
}

// Slugs lists the paginated collections in menu order.
func Slugs() []string {
	return []string{
		Projects.Slug,
		Activities.Slug,
		SuccessStories.Slug,
		Statistics.Slug,
		Reports.Slug,
		Centers.Slug,
	}
}

// Endpoint is a non-paginated list endpoint.
type Endpoint struct {
	Name       string
	Path       string
	ItemKey    string // empty means data is the array
	AlwaysSend []string
}

var (
	Heroes      = Endpoint{Name: "heroes", Path: "/heroes"}
	Partners    = Endpoint{Name: "partners", Path: "/partners"}
	SectorList  = Endpoint{Name: "sectors", Path: "/sectors", AlwaysSend: []string{"search"}}
	CenterList  = Endpoint{Name: "centers", Path: "/centers", ItemKey: "centers"}
	LatestStats = Endpoint{Name: "statistics", Path: "/statistics", ItemKey: "statistics"}
	StoryList   = Endpoint{Name: "success-stories", Path: "/success-stories", ItemKey: "success_stories", AlwaysSend: []string{"search", "center_id", "tag_id"}}
)

const (
	homeStatsPath  = "/home-statistics"
	jobRequestPath = "/job-request"
)
