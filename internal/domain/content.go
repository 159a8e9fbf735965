package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Project is a relief project. Sectors and Centers are display labels, not references.
type Project struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Image       string   `json:"image"`
	Tags        []Tag    `json:"tags"`
	Sectors     []string `json:"sectors,omitempty"`
	Centers     []string `json:"centers,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

func (p Project) ItemID() int { return p.ID }
func (p Project) ItemName() string { return p.Name }
func (p Project) ItemTags() []Tag { return p.Tags }

// Activity is a field activity carried out under one or more projects.
type Activity struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Images         []string `json:"images,omitempty"`
	Tags           []Tag    `json:"tags"`
	Sectors        []string `json:"sectors,omitempty"`
	Projects       []string `json:"projects,omitempty"`
	Centers        []string `json:"centers,omitempty"`
	PublishingDate string   `json:"publishing_date,omitempty"`
	VideoURL       string   `json:"video_url,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

func (a Activity) ItemID() int { return a.ID }
func (a Activity) ItemName() string { return a.Name }
func (a Activity) ItemTags() []Tag { return a.Tags }

// Statistic is a published statistics sheet.
type Statistic struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Image          string `json:"image"`
	PublishingDate string `json:"publishing_date,omitempty"`
	Tags           []Tag  `json:"tags"`
	CreatedAt      string `json:"created_at,omitempty"`
}

func (s Statistic) ItemID() int { return s.ID }
func (s Statistic) ItemName() string { return s.Name }
func (s Statistic) ItemTags() []Tag { return s.Tags }

// Report is a downloadable report.
type Report struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Image          string `json:"image,omitempty"`
	PublishingDate string `json:"publishing_date,omitempty"`
	PDF            string `json:"pdf,omitempty"`
	Tags           []Tag  `json:"tags,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

func (r Report) ItemID() int { return r.ID }
func (r Report) ItemName() string { return r.Name }
func (r Report) ItemTags() []Tag { return r.Tags }

// SuccessStory is a beneficiary story.
type SuccessStory struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Images         []string `json:"images,omitempty"`
	VideoURL       string   `json:"video_url,omitempty"`
	PublishingDate string   `json:"publishing_date,omitempty"`
	Tags           []Tag    `json:"tags"`
	Sectors        []string `json:"sectors,omitempty"`
	Projects       []string `json:"projects,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

func (s SuccessStory) ItemID() int { return s.ID }
func (s SuccessStory) ItemName() string { return s.Name }
func (s SuccessStory) ItemTags() []Tag { return s.Tags }

// Center is a physical service center. Lat and Lon are zero when unknown.
type Center struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	Address     string     `json:"address,omitempty"`
	Lat         Coordinate `json:"lat,omitempty"`
	Lon         Coordinate `json:"lon,omitempty"`
	OpeningDate string     `json:"opening_date,omitempty"`
	SectorIDs   []string   `json:"sector_id,omitempty"`
	Tags        []Tag      `json:"tags,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
}

func (c Center) ItemID() int { return c.ID }
func (c Center) ItemName() string { return c.Name }
func (c Center) ItemTags() []Tag { return c.Tags }

// Located reports whether the center carries usable map coordinates.
func (c Center) Located() bool {
	return c.Lat != 0 || c.Lon != 0
}

// Sector is a humanitarian sector. Sectors have no tags.
type Sector struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (s Sector) ItemID() int { return s.ID }
func (s Sector) ItemName() string { return s.Name }
func (s Sector) ItemTags() []Tag { return nil }

// Hero is a home page banner slide.
type Hero struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Image     string `json:"image"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Partner is a partner organisation logo.
type Partner struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Website   string `json:"website,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// HeadlineStatistic is one figure on the home page counter strip.
type HeadlineStatistic struct {
	Title  string `json:"title"`
	Number Figure `json:"number"`
}

// HomeStatistics is the home page counter strip plus the about video.
type HomeStatistics struct {
	Statistics []HeadlineStatistic `json:"statistics"`
	YouTubeURL string              `json:"youtube_url"`
}

// Coordinate is a latitude or longitude that the backend sends either as a
// JSON number or as a numeric string.
type Coordinate float64

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null.
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*c = Coordinate(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = Coordinate(f)
	return nil
}

// Figure is a display number such as "1200" or "+35K". The backend sends it
// either as a JSON string or as a JSON number.
type Figure string

// UnmarshalJSON keeps numbers in their literal form.
func (f *Figure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Figure(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = Figure(n.String())
	return nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02",
}

// ParseDate parses the date formats the content API is known to emit.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
