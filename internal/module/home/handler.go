// Package home serves the landing and about pages.
package home

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mosaic-hrd/website/internal/content"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/listing"
	"github.com/mosaic-hrd/website/internal/media"
	"github.com/mosaic-hrd/website/internal/middleware"
)

const (
	homeTemplate  = "pages/home.html"
	aboutTemplate = "pages/about.html"
)

// Handler renders the home and about pages.
type Handler struct {
	client   *content.Client
	maxPages int
}

// NewHandler creates a Handler. maxPages caps the project carousel fetch;
// zero means listing.DefaultMaxPages.
func NewHandler(client *content.Client, maxPages int) *Handler {
	return &Handler{client: client, maxPages: maxPages}
}

// view is everything the landing page shows.
type view struct {
	Heroes   []domain.Hero
	Stats    domain.HomeStatistics
	Video    string
	Projects []domain.Project
	Partners []domain.Partner
	Sectors  []domain.Sector
}

// Home handles GET /:locale.
func (h *Handler) Home(c *gin.Context) {
	v := h.load(c.Request.Context(), middleware.GetLocale(c))
	c.HTML(http.StatusOK, homeTemplate, middleware.PageData(c, gin.H{
		"Title":    middleware.GetDictionary(c).T("nav.home"),
		"Nav":      "home",
		"Heroes":   v.Heroes,
		"Stats":    v.Stats.Statistics,
		"Video":    v.Video,
		"Projects": v.Projects,
		"Partners": v.Partners,
		"Sectors":  v.Sectors,
	}))
}

// About handles GET /:locale/about.
func (h *Handler) About(c *gin.Context) {
	ctx, locale := c.Request.Context(), middleware.GetLocale(c)

	var (
		stats   domain.HomeStatistics
		sectors []domain.Sector
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats = content.FetchHomeStatistics(gctx, h.client, locale)
		return nil
	})
	g.Go(func() error {
		sectors = content.FetchList[domain.Sector](gctx, h.client, content.SectorList, nil, locale)
		return nil
	})
	_ = g.Wait()

	c.HTML(http.StatusOK, aboutTemplate, middleware.PageData(c, gin.H{
		"Title":   middleware.GetDictionary(c).T("about.title"),
		"Nav":     "about",
		"Stats":   stats.Statistics,
		"Video":   media.EmbedURL(stats.YouTubeURL),
		"Sectors": sectors,
	}))
}

// load fetches the landing page sections concurrently. Each fetch is
// fail-soft, so a dead section renders empty while the rest still show.
func (h *Handler) load(ctx context.Context, locale string) view {
	var v view
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v.Heroes = content.FetchList[domain.Hero](gctx, h.client, content.Heroes, nil, locale)
		return nil
	})
	g.Go(func() error {
		v.Stats = content.FetchHomeStatistics(gctx, h.client, locale)
		v.Video = media.EmbedURL(v.Stats.YouTubeURL)
		return nil
	})
	g.Go(func() error {
		ctl := listing.NewController(listing.Remote[domain.Project](h.client, content.Projects, 0, nil, locale))
		defer ctl.Detach()
		v.Projects = listing.CollectAll(gctx, ctl, h.maxPages)
		return nil
	})
	g.Go(func() error {
		v.Partners = content.FetchList[domain.Partner](gctx, h.client, content.Partners, nil, locale)
		return nil
	})
	g.Go(func() error {
		v.Sectors = content.FetchList[domain.Sector](gctx, h.client, content.SectorList, nil, locale)
		return nil
	})
	_ = g.Wait()
	return v
}
