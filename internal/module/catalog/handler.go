package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/media"
	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

const (
	listTemplate     = "pages/list.html"
	detailTemplate   = "pages/detail.html"
	notFoundTemplate = "errors/404.html"
)

// Handler renders collection list and detail pages.
type Handler struct {
	client   *content.Client
	sections map[string]section
}

// NewHandler creates a Handler reading from client.
func NewHandler(client *content.Client) *Handler {
	return &Handler{client: client, sections: sections()}
}

// List returns the handler of GET /:locale/<slug>.
func (h *Handler) List(slug string) gin.HandlerFunc {
	sec := h.sections[slug]
	return func(c *gin.Context) {
		req := pkg.ParsePageRequest(c, sec.perPage(), sec.remoteKeys())
		filter := pkg.ParseFilterState(c)

		view := sec.view(c.Request.Context(), h.client, req, filter, middleware.GetLocale(c))
		view.path = c.Request.URL.Path
		view.query = c.Request.URL.Query()

		c.HTML(http.StatusOK, listTemplate, middleware.PageData(c, gin.H{
			"Title": middleware.GetDictionary(c).T("nav." + slug),
			"Nav":   slug,
			"List":  view,
		}))
	}
}

// Detail returns the handler of GET /:locale/<slug>/:id. Unknown or invalid
// ids render the 404 page.
func (h *Handler) Detail(slug string) gin.HandlerFunc {
	sec := h.sections[slug]
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			notFound(c)
			return
		}
		ctx, locale := c.Request.Context(), middleware.GetLocale(c)

		entity, tags, found := sec.detail(ctx, h.client, id, locale)
		if !found {
			notFound(c)
			return
		}

		rels := sec.relations()
		pages := make(map[string]int, len(rels))
		for _, rel := range rels {
			pages[rel.key] = pkg.ParsePage(c, rel.key+"_page")
		}
		related := loadRelated(ctx, h.client, rels, id, pages, locale)
		for i := range related {
			related[i].path = c.Request.URL.Path
			related[i].query = c.Request.URL.Query()
		}

		title := ""
		if item, ok := entity.(domain.Listable); ok {
			title = item.ItemName()
		}
		c.HTML(http.StatusOK, detailTemplate, middleware.PageData(c, gin.H{
			"Title":   title,
			"Nav":     slug,
			"Slug":    slug,
			"Entity":  entity,
			"Tags":    tags,
			"Video":   h.video(ctx, entity, locale),
			"Related": related,
		}))
	}
}

// video is the embed URL shown on a detail page: the entity's own video, or
// the organisation video on statistics pages.
func (h *Handler) video(ctx context.Context, entity any, locale string) string {
	switch e := entity.(type) {
	case *domain.Activity:
		return media.EmbedURL(e.VideoURL)
	case *domain.SuccessStory:
		return media.EmbedURL(e.VideoURL)
	case *domain.Statistic:
		return media.EmbedURL(content.FetchHomeStatistics(ctx, h.client, locale).YouTubeURL)
	}
	return ""
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, notFoundTemplate, middleware.ErrorPageData(c, http.StatusNotFound))
}
