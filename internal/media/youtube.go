// Package media turns the video links stored in the content API into
// embeddable player URLs.
package media

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes are the youtube.com path forms that carry the id as the next segment.
var pathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/"}

// YouTubeID extracts the 11-character video id from a YouTube link. It
// accepts watch?v=, youtu.be/, embed/, shorts/, live/ and v/ forms with or
// without a scheme, and returns "" for anything else.
func YouTubeID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, p := range pathPrefixes {
			if strings.HasPrefix(u.Path, p) {
				id = firstSegment(strings.TrimPrefix(u.Path, p[:len(p)-1]))
				break
			}
		}
	}
	if !videoIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// EmbedURL returns the player URL for raw, or "" when raw is not a
// recognizable YouTube link.
func EmbedURL(raw string) string {
	id := YouTubeID(raw)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}

// ThumbnailURL returns the high-quality still for raw, or "".
func ThumbnailURL(raw string) string {
	id := YouTubeID(raw)
	if id == "" {
		return ""
	}
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
